// internal/model/sync.go
package model

import "time"

// Sync interval names accepted by the external sync scheduler. Anything else
// falls back to daily.
const (
	SyncIntervalHourly = "hourly"
	SyncIntervalDaily  = "daily"
	SyncIntervalWeekly = "weekly"
)

// Sync outcome statuses.
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// SyncSettings configures the HubSpot company sync. The access token is not
// carried here; it is fetched on demand through the settings repository.
type SyncSettings struct {
	Enabled         bool       `db:"enabled" json:"enabled"`
	AutoSyncEnabled bool       `db:"auto_sync_enabled" json:"auto_sync_enabled"`
	SyncInterval    string     `db:"sync_interval" json:"sync_interval"`
	LastSyncStatus  *string    `db:"last_sync_status" json:"last_sync_status,omitempty"`
	LastSyncCount   int        `db:"last_sync_count" json:"last_sync_count"`
	LastSyncedAt    *time.Time `db:"last_synced_at" json:"last_synced_at,omitempty"`
}

// SyncLog records one sync cycle. ErrorMessage holds either the terminal
// error for a failed cycle or a serialized list of partial per-item errors
// for a successful one.
type SyncLog struct {
	ID               int       `db:"id" json:"id"`
	StartedAt        time.Time `db:"started_at" json:"started_at"`
	CompletedAt      time.Time `db:"completed_at" json:"completed_at"`
	Status           string    `db:"status" json:"status"`
	CompaniesFound   int       `db:"companies_found" json:"companies_found"`
	CompaniesCreated int       `db:"companies_created" json:"companies_created"`
	CompaniesUpdated int       `db:"companies_updated" json:"companies_updated"`
	ErrorMessage     *string   `db:"error_message" json:"error_message,omitempty"`
}
