package repository

import (
	"database/sql"
	"time"

	"github.com/mkanyali/assetcomply-backend/internal/model"
)

// CompanyRepositoryInterface is what the CRM sync needs to upsert companies
type CompanyRepositoryInterface interface {
	Create(c *model.Company) error
	Update(c *model.Company) error
	GetByHubSpotID(hubspotID string) (*model.Company, error)
	ListAll() ([]model.Company, error)
	Count() (int, error)
}

type CompanyRepository struct {
	DB *sql.DB
}

const companyColumns = `id, name, description, hubspot_id, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }) (*model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.HubSpotID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) Create(c *model.Company) error {
	c.CreatedAt = time.Now()
	query := `
        INSERT INTO companies (name, description, hubspot_id, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	return r.DB.QueryRow(query, c.Name, c.Description, c.HubSpotID, c.CreatedAt).Scan(&c.ID)
}

func (r *CompanyRepository) Update(c *model.Company) error {
	now := time.Now()
	c.UpdatedAt = &now
	query := `UPDATE companies SET name=$1, description=$2, hubspot_id=$3, updated_at=$4 WHERE id=$5`
	_, err := r.DB.Exec(query, c.Name, c.Description, c.HubSpotID, c.UpdatedAt, c.ID)
	return err
}

// GetByHubSpotID fetches the company previously synced from the CRM; returns
// nil when it has not been seen before.
func (r *CompanyRepository) GetByHubSpotID(hubspotID string) (*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE hubspot_id=$1`
	c, err := scanCompany(r.DB.QueryRow(query, hubspotID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *CompanyRepository) ListAll() ([]model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []model.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) Count() (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM companies`).Scan(&n)
	return n, err
}

var _ CompanyRepositoryInterface = (*CompanyRepository)(nil)
