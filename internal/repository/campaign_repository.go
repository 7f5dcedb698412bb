package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id int) (*model.Campaign, error)
	ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)
	GetByStatus(status string) ([]*model.Campaign, error)
	UpdateStatus(campaignID int, status string) error
	Delete(id int) error
	GetRecordStats(campaignID int) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, name, description, start_date, end_date, reminder_days,
        escalation_days, status, created_by, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.StartDate, &c.EndDate, &c.ReminderDays,
		&c.EscalationDays, &c.Status, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	query := `
        INSERT INTO attestation_campaigns
            (name, description, start_date, end_date, reminder_days, escalation_days, status, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.Name, c.Description, c.StartDate, c.EndDate, c.ReminderDays,
		c.EscalationDays, c.Status, c.CreatedBy, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM attestation_campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM attestation_campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM attestation_campaigns WHERE 1=1`
	argsCount := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// GetByStatus fetches every campaign in the given status. The scheduler uses
// this to load active campaigns on each pass.
func (r *CampaignRepository) GetByStatus(status string) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM attestation_campaigns WHERE status=$1 ORDER BY id`
	rows, err := r.DB.Query(query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
	query := `UPDATE attestation_campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, time.Now(), campaignID)
	return err
}

// Delete removes a campaign. Records and pending invites cascade.
func (r *CampaignRepository) Delete(id int) error {
	res, err := r.DB.Exec(`DELETE FROM attestation_campaigns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

// GetRecordStats returns record counts by status for a campaign.
func (r *CampaignRepository) GetRecordStats(campaignID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM attestation_records WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		model.RecordStatusPending:    0,
		model.RecordStatusInProgress: 0,
		model.RecordStatusCompleted:  0,
	}
	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
		total += count
	}
	stats["total"] = total
	return stats, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
