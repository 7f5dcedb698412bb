package repository

import (
	"database/sql"
	"time"

	"github.com/mkanyali/assetcomply-backend/internal/model"
)

// OutboundEmailRepositoryInterface backs the invite delivery pipeline: rows
// are created at campaign start and consumed by the worker.
type OutboundEmailRepositoryInterface interface {
	Create(msg *model.OutboundEmail) error
	GetByID(id int) (*model.OutboundEmail, error)
	UpdateStatus(id int, status, lastError string) error
}

type OutboundEmailRepository struct {
	DB *sql.DB
}

const outboundColumns = `id, campaign_id, recipient, kind, status, subject, body,
        last_error, retry_count, created_at, updated_at`

func (r *OutboundEmailRepository) Create(msg *model.OutboundEmail) error {
	now := time.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	if msg.Status == "" {
		msg.Status = model.EmailStatusPending
	}
	query := `
        INSERT INTO outbound_emails
            (campaign_id, recipient, kind, status, subject, body, last_error, retry_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		msg.CampaignID, msg.Recipient, msg.Kind, msg.Status, msg.Subject,
		msg.Body, msg.LastError, msg.RetryCount, msg.CreatedAt, msg.UpdatedAt,
	).Scan(&msg.ID)
}

// GetByID fetches a queued email; returns nil when absent
func (r *OutboundEmailRepository) GetByID(id int) (*model.OutboundEmail, error) {
	query := `SELECT ` + outboundColumns + ` FROM outbound_emails WHERE id=$1`
	var msg model.OutboundEmail
	err := r.DB.QueryRow(query, id).Scan(
		&msg.ID, &msg.CampaignID, &msg.Recipient, &msg.Kind, &msg.Status,
		&msg.Subject, &msg.Body, &msg.LastError, &msg.RetryCount,
		&msg.CreatedAt, &msg.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *OutboundEmailRepository) UpdateStatus(id int, status, lastError string) error {
	query := `UPDATE outbound_emails SET status=$1, last_error=$2, retry_count=retry_count+1, updated_at=$3 WHERE id=$4`
	_, err := r.DB.Exec(query, status, lastError, time.Now(), id)
	return err
}

var _ OutboundEmailRepositoryInterface = (*OutboundEmailRepository)(nil)
