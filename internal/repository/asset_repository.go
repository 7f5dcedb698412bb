package repository

import (
	"database/sql"
	"strings"
	"time"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/model"
)

type AssetRepositoryInterface interface {
	Create(a *model.Asset) error
	GetByID(id int) (*model.Asset, error)
	ListAll() ([]model.Asset, error)
	Delete(id int) error
	Count() (int, error)
}

type AssetRepository struct {
	DB *sql.DB
}

const assetColumns = `id, employee_first_name, employee_last_name, employee_email,
        company_name, asset_type, make, model, serial_number, asset_tag, status, created_at`

func scanAsset(row interface{ Scan(...any) error }) (*model.Asset, error) {
	var a model.Asset
	err := row.Scan(
		&a.ID, &a.EmployeeFirstName, &a.EmployeeLastName, &a.EmployeeEmail,
		&a.CompanyName, &a.AssetType, &a.Make, &a.Model, &a.SerialNumber,
		&a.AssetTag, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an asset. An empty or whitespace-only asset tag normalizes
// to NULL on write; non-null tags must be unique, duplicate NULLs are fine.
func (r *AssetRepository) Create(a *model.Asset) error {
	if a.AssetTag != nil {
		trimmed := strings.TrimSpace(*a.AssetTag)
		if trimmed == "" {
			a.AssetTag = nil
		} else {
			a.AssetTag = &trimmed
		}
	}

	if a.AssetTag != nil {
		var count int
		err := r.DB.QueryRow(`SELECT COUNT(*) FROM assets WHERE asset_tag=$1`, *a.AssetTag).Scan(&count)
		if err != nil {
			return err
		}
		if count > 0 {
			return appErrors.NewValidation("asset_tag %q already exists", *a.AssetTag)
		}
	}

	a.CreatedAt = time.Now()
	if a.Status == "" {
		a.Status = "active"
	}
	query := `
        INSERT INTO assets
            (employee_first_name, employee_last_name, employee_email, company_name,
             asset_type, make, model, serial_number, asset_tag, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		a.EmployeeFirstName, a.EmployeeLastName, a.EmployeeEmail, a.CompanyName,
		a.AssetType, a.Make, a.Model, a.SerialNumber, a.AssetTag, a.Status, a.CreatedAt,
	).Scan(&a.ID)
}

func (r *AssetRepository) GetByID(id int) (*model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id=$1`
	a, err := scanAsset(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewAssetNotFound(id)
		}
		return nil, err
	}
	return a, nil
}

func (r *AssetRepository) ListAll() ([]model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets ORDER BY id DESC`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

func (r *AssetRepository) Delete(id int) error {
	res, err := r.DB.Exec(`DELETE FROM assets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewAssetNotFound(id)
	}
	return nil
}

func (r *AssetRepository) Count() (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM assets`).Scan(&n)
	return n, err
}

var _ AssetRepositoryInterface = (*AssetRepository)(nil)
