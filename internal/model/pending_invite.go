// internal/model/pending_invite.go
package model

import "time"

// PendingInvite lets one specific, not-yet-registered employee join a
// campaign while self-service registration is globally disabled. Valid only
// while the owning campaign is active and registered_at is unset.
type PendingInvite struct {
	ID                int        `db:"id" json:"id"`
	CampaignID        int        `db:"campaign_id" json:"campaign_id"`
	EmployeeEmail     string     `db:"employee_email" json:"employee_email"`
	EmployeeFirstName string     `db:"employee_first_name" json:"employee_first_name"`
	EmployeeLastName  string     `db:"employee_last_name" json:"employee_last_name"`
	InviteToken       string     `db:"invite_token" json:"invite_token"`
	RegisteredAt      *time.Time `db:"registered_at" json:"registered_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}
