// internal/db/schema.go
package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the tables when they do not exist yet. The only dialect
// difference the schema needs is the autoincrement primary key column.
func Migrate(conn *sql.DB, driver string) error {
	serial := "SERIAL PRIMARY KEY"
	if driver == "sqlite3" || driver == "sqlite" {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id %s,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'employee',
			manager_first_name TEXT NOT NULL DEFAULT '',
			manager_last_name TEXT NOT NULL DEFAULT '',
			manager_email TEXT NOT NULL DEFAULT ''
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS attestation_campaigns (
			id %s,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP,
			reminder_days INTEGER NOT NULL DEFAULT 7,
			escalation_days INTEGER NOT NULL DEFAULT 14,
			status TEXT NOT NULL DEFAULT 'draft',
			created_by INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS attestation_records (
			id %s,
			campaign_id INTEGER NOT NULL REFERENCES attestation_campaigns(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			completed_at TIMESTAMP,
			reminder_sent_at TIMESTAMP,
			escalation_sent_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS attestation_pending_invites (
			id %s,
			campaign_id INTEGER NOT NULL REFERENCES attestation_campaigns(id) ON DELETE CASCADE,
			employee_email TEXT NOT NULL,
			employee_first_name TEXT NOT NULL DEFAULT '',
			employee_last_name TEXT NOT NULL DEFAULT '',
			invite_token TEXT NOT NULL UNIQUE,
			registered_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS assets (
			id %s,
			employee_first_name TEXT NOT NULL DEFAULT '',
			employee_last_name TEXT NOT NULL DEFAULT '',
			employee_email TEXT NOT NULL DEFAULT '',
			company_name TEXT NOT NULL DEFAULT '',
			asset_type TEXT NOT NULL DEFAULT '',
			make TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			serial_number TEXT NOT NULL DEFAULT '',
			asset_tag TEXT UNIQUE,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP NOT NULL
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS companies (
			id %s,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			hubspot_id TEXT UNIQUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP
		)`, serial),

		`CREATE TABLE IF NOT EXISTS auth_settings (
			id INTEGER PRIMARY KEY,
			registration_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			password_login_enabled BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS hubspot_settings (
			id INTEGER PRIMARY KEY,
			enabled BOOLEAN NOT NULL DEFAULT FALSE,
			auto_sync_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			sync_interval TEXT NOT NULL DEFAULT 'daily',
			access_token TEXT NOT NULL DEFAULT '',
			last_sync_status TEXT,
			last_sync_count INTEGER NOT NULL DEFAULT 0,
			last_synced_at TIMESTAMP
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS hubspot_sync_logs (
			id %s,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP NOT NULL,
			status TEXT NOT NULL,
			companies_found INTEGER NOT NULL DEFAULT 0,
			companies_created INTEGER NOT NULL DEFAULT 0,
			companies_updated INTEGER NOT NULL DEFAULT 0,
			error_message TEXT
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS audit_log (
			id %s,
			actor TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			entity TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS outbound_emails (
			id %s,
			campaign_id INTEGER NOT NULL,
			recipient TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			subject TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			last_error TEXT NOT NULL DEFAULT '',
			retry_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, serial),
	}

	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
