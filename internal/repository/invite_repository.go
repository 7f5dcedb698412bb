package repository

import (
	"database/sql"
	"time"

	"github.com/mkanyali/assetcomply-backend/internal/model"
)

type InviteRepositoryInterface interface {
	Create(inv *model.PendingInvite) error
	GetByToken(token string) (*model.PendingInvite, error)
	GetByCampaignID(campaignID int) ([]*model.PendingInvite, error)
	MarkRegistered(id int, at time.Time) error
}

type InviteRepository struct {
	DB *sql.DB
}

const inviteColumns = `id, campaign_id, employee_email, employee_first_name,
        employee_last_name, invite_token, registered_at, created_at`

func scanInvite(row interface{ Scan(...any) error }) (*model.PendingInvite, error) {
	var inv model.PendingInvite
	err := row.Scan(
		&inv.ID, &inv.CampaignID, &inv.EmployeeEmail, &inv.EmployeeFirstName,
		&inv.EmployeeLastName, &inv.InviteToken, &inv.RegisteredAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InviteRepository) Create(inv *model.PendingInvite) error {
	inv.CreatedAt = time.Now()
	query := `
        INSERT INTO attestation_pending_invites
            (campaign_id, employee_email, employee_first_name, employee_last_name, invite_token, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		inv.CampaignID, inv.EmployeeEmail, inv.EmployeeFirstName,
		inv.EmployeeLastName, inv.InviteToken, inv.CreatedAt,
	).Scan(&inv.ID)
}

// GetByToken fetches an invite by its token; returns nil when absent
func (r *InviteRepository) GetByToken(token string) (*model.PendingInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM attestation_pending_invites WHERE invite_token=$1`
	inv, err := scanInvite(r.DB.QueryRow(query, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r *InviteRepository) GetByCampaignID(campaignID int) ([]*model.PendingInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM attestation_pending_invites WHERE campaign_id=$1 ORDER BY id`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := []*model.PendingInvite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// MarkRegistered consumes the invite. Stamped at most once.
func (r *InviteRepository) MarkRegistered(id int, at time.Time) error {
	query := `UPDATE attestation_pending_invites SET registered_at=$1 WHERE id=$2 AND registered_at IS NULL`
	_, err := r.DB.Exec(query, at, id)
	return err
}

var _ InviteRepositoryInterface = (*InviteRepository)(nil)
