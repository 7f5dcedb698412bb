package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/model"
)

type RecordRepositoryInterface interface {
	Create(rec *model.AttestationRecord) error
	GetByID(id int) (*model.AttestationRecord, error)
	GetByCampaignID(campaignID int) ([]*model.AttestationRecord, error)
	GetByUserID(userID int) ([]*model.AttestationRecord, error)
	UpdateStatus(id int, status string, completedAt *time.Time) error
	StampReminderSent(id int, at time.Time) error
	StampEscalationSent(id int, at time.Time) error
}

type RecordRepository struct {
	DB *sql.DB
}

const recordColumns = `id, campaign_id, user_id, status, completed_at,
        reminder_sent_at, escalation_sent_at, created_at`

func scanRecord(row interface{ Scan(...any) error }) (*model.AttestationRecord, error) {
	var rec model.AttestationRecord
	err := row.Scan(
		&rec.ID, &rec.CampaignID, &rec.UserID, &rec.Status, &rec.CompletedAt,
		&rec.ReminderSentAt, &rec.EscalationSentAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecordRepository) Create(rec *model.AttestationRecord) error {
	rec.CreatedAt = time.Now()
	if rec.Status == "" {
		rec.Status = model.RecordStatusPending
	}
	query := `
        INSERT INTO attestation_records (campaign_id, user_id, status, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	return r.DB.QueryRow(query, rec.CampaignID, rec.UserID, rec.Status, rec.CreatedAt).Scan(&rec.ID)
}

func (r *RecordRepository) GetByID(id int) (*model.AttestationRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM attestation_records WHERE id=$1`
	rec, err := scanRecord(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewRecordNotFound(id)
		}
		return nil, err
	}
	return rec, nil
}

func (r *RecordRepository) GetByCampaignID(campaignID int) ([]*model.AttestationRecord, error) {
	return r.list(`SELECT `+recordColumns+` FROM attestation_records WHERE campaign_id=$1 ORDER BY id`, campaignID)
}

func (r *RecordRepository) GetByUserID(userID int) ([]*model.AttestationRecord, error) {
	return r.list(`SELECT `+recordColumns+` FROM attestation_records WHERE user_id=$1 ORDER BY id`, userID)
}

func (r *RecordRepository) list(query string, arg any) ([]*model.AttestationRecord, error) {
	rows, err := r.DB.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*model.AttestationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *RecordRepository) UpdateStatus(id int, status string, completedAt *time.Time) error {
	query := `UPDATE attestation_records SET status=$1, completed_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, completedAt, id)
	return err
}

// StampReminderSent sets reminder_sent_at once; an already-stamped record is
// left untouched.
func (r *RecordRepository) StampReminderSent(id int, at time.Time) error {
	query := `UPDATE attestation_records SET reminder_sent_at=$1 WHERE id=$2 AND reminder_sent_at IS NULL`
	_, err := r.DB.Exec(query, at, id)
	return err
}

// StampEscalationSent sets escalation_sent_at once, same contract as
// StampReminderSent.
func (r *RecordRepository) StampEscalationSent(id int, at time.Time) error {
	query := `UPDATE attestation_records SET escalation_sent_at=$1 WHERE id=$2 AND escalation_sent_at IS NULL`
	_, err := r.DB.Exec(query, at, id)
	return err
}

var _ RecordRepositoryInterface = (*RecordRepository)(nil)
