package repository

import (
	"database/sql"
	"time"

	"github.com/mkanyali/assetcomply-backend/internal/model"
)

// Settings rows are singletons keyed on id=1 and upserted in place.

type AuthSettingsRepositoryInterface interface {
	Get() (*model.AuthSettings, error)
	Update(s *model.AuthSettings) error
}

type AuthSettingsRepository struct {
	DB *sql.DB
}

// Get returns the auth settings, defaulting both gates to enabled when no
// row has been written yet.
func (r *AuthSettingsRepository) Get() (*model.AuthSettings, error) {
	var s model.AuthSettings
	err := r.DB.QueryRow(
		`SELECT registration_enabled, password_login_enabled FROM auth_settings WHERE id=1`,
	).Scan(&s.RegistrationEnabled, &s.PasswordLoginEnabled)
	if err == sql.ErrNoRows {
		return &model.AuthSettings{RegistrationEnabled: true, PasswordLoginEnabled: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AuthSettingsRepository) Update(s *model.AuthSettings) error {
	query := `
        INSERT INTO auth_settings (id, registration_enabled, password_login_enabled)
        VALUES (1, $1, $2)
        ON CONFLICT (id) DO UPDATE SET
            registration_enabled=excluded.registration_enabled,
            password_login_enabled=excluded.password_login_enabled
    `
	_, err := r.DB.Exec(query, s.RegistrationEnabled, s.PasswordLoginEnabled)
	return err
}

var _ AuthSettingsRepositoryInterface = (*AuthSettingsRepository)(nil)

type SyncSettingsRepositoryInterface interface {
	Get() (*model.SyncSettings, error)
	Update(s *model.SyncSettings) error
	GetAccessToken() (string, error)
	SetAccessToken(token string) error
	UpdateSyncStatus(status string, count int, at time.Time) error
}

type SyncSettingsRepository struct {
	DB *sql.DB
}

func (r *SyncSettingsRepository) Get() (*model.SyncSettings, error) {
	var s model.SyncSettings
	err := r.DB.QueryRow(`
        SELECT enabled, auto_sync_enabled, sync_interval, last_sync_status, last_sync_count, last_synced_at
        FROM hubspot_settings WHERE id=1
    `).Scan(&s.Enabled, &s.AutoSyncEnabled, &s.SyncInterval, &s.LastSyncStatus, &s.LastSyncCount, &s.LastSyncedAt)
	if err == sql.ErrNoRows {
		return &model.SyncSettings{SyncInterval: model.SyncIntervalDaily}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SyncSettingsRepository) Update(s *model.SyncSettings) error {
	query := `
        INSERT INTO hubspot_settings (id, enabled, auto_sync_enabled, sync_interval)
        VALUES (1, $1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET
            enabled=excluded.enabled,
            auto_sync_enabled=excluded.auto_sync_enabled,
            sync_interval=excluded.sync_interval
    `
	_, err := r.DB.Exec(query, s.Enabled, s.AutoSyncEnabled, s.SyncInterval)
	return err
}

// GetAccessToken fetches the sync credential on demand; it is never carried
// on SyncSettings.
func (r *SyncSettingsRepository) GetAccessToken() (string, error) {
	var token string
	err := r.DB.QueryRow(`SELECT access_token FROM hubspot_settings WHERE id=1`).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return token, err
}

func (r *SyncSettingsRepository) SetAccessToken(token string) error {
	query := `
        INSERT INTO hubspot_settings (id, access_token) VALUES (1, $1)
        ON CONFLICT (id) DO UPDATE SET access_token=excluded.access_token
    `
	_, err := r.DB.Exec(query, token)
	return err
}

func (r *SyncSettingsRepository) UpdateSyncStatus(status string, count int, at time.Time) error {
	query := `UPDATE hubspot_settings SET last_sync_status=$1, last_sync_count=$2, last_synced_at=$3 WHERE id=1`
	_, err := r.DB.Exec(query, status, count, at)
	return err
}

var _ SyncSettingsRepositoryInterface = (*SyncSettingsRepository)(nil)

type SyncLogRepositoryInterface interface {
	Insert(l *model.SyncLog) error
	List(limit int) ([]model.SyncLog, error)
}

type SyncLogRepository struct {
	DB *sql.DB
}

func (r *SyncLogRepository) Insert(l *model.SyncLog) error {
	query := `
        INSERT INTO hubspot_sync_logs
            (started_at, completed_at, status, companies_found, companies_created, companies_updated, error_message)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		l.StartedAt, l.CompletedAt, l.Status,
		l.CompaniesFound, l.CompaniesCreated, l.CompaniesUpdated, l.ErrorMessage,
	).Scan(&l.ID)
}

func (r *SyncLogRepository) List(limit int) ([]model.SyncLog, error) {
	if limit < 1 {
		limit = 50
	}
	query := `
        SELECT id, started_at, completed_at, status, companies_found, companies_created, companies_updated, error_message
        FROM hubspot_sync_logs ORDER BY id DESC LIMIT $1
    `
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.SyncLog{}
	for rows.Next() {
		var l model.SyncLog
		if err := rows.Scan(&l.ID, &l.StartedAt, &l.CompletedAt, &l.Status,
			&l.CompaniesFound, &l.CompaniesCreated, &l.CompaniesUpdated, &l.ErrorMessage); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

var _ SyncLogRepositoryInterface = (*SyncLogRepository)(nil)
