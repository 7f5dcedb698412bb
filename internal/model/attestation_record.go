// internal/model/attestation_record.go
package model

import "time"

// Attestation record statuses.
const (
	RecordStatusPending    = "pending"
	RecordStatusInProgress = "in_progress"
	RecordStatusCompleted  = "completed"
)

// AttestationRecord tracks one employee's progress within a campaign.
// reminder_sent_at and escalation_sent_at are stamped at most once.
type AttestationRecord struct {
	ID               int        `db:"id" json:"id"`
	CampaignID       int        `db:"campaign_id" json:"campaign_id"`
	UserID           int        `db:"user_id" json:"user_id"`
	Status           string     `db:"status" json:"status"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ReminderSentAt   *time.Time `db:"reminder_sent_at" json:"reminder_sent_at,omitempty"`
	EscalationSentAt *time.Time `db:"escalation_sent_at" json:"escalation_sent_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}
