// internal/model/outbound_email.go
package model

import "time"

// Outbound email kinds and statuses.
const (
	EmailKindInvite = "invite"

	EmailStatusPending = "pending"
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
)

// OutboundEmail is a queued notification awaiting delivery by the worker.
type OutboundEmail struct {
	ID         int       `db:"id" json:"id"`
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	Recipient  string    `db:"recipient" json:"recipient"`
	Kind       string    `db:"kind" json:"kind"`
	Status     string    `db:"status" json:"status"`
	Subject    string    `db:"subject" json:"subject"`
	Body       string    `db:"body" json:"body"`
	LastError  string    `db:"last_error" json:"last_error,omitempty"`
	RetryCount int       `db:"retry_count" json:"retry_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
