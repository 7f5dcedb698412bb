// internal/model/campaign.go
package model

import "time"

// Campaign statuses. Terminal states are completed and cancelled.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

type Campaign struct {
	ID             int        `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description"`
	StartDate      time.Time  `db:"start_date" json:"start_date"`
	EndDate        *time.Time `db:"end_date" json:"end_date,omitempty"`
	ReminderDays   int        `db:"reminder_days" json:"reminder_days"`
	EscalationDays int        `db:"escalation_days" json:"escalation_days"`
	Status         string     `db:"status" json:"status"`
	CreatedBy      int        `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Expired reports whether the campaign has a set end date that is in the past.
func (c *Campaign) Expired(now time.Time) bool {
	return c.EndDate != nil && now.After(*c.EndDate)
}
