package repository

import (
	"database/sql"
	"time"

	"github.com/mkanyali/assetcomply-backend/internal/model"
)

type AuditRepositoryInterface interface {
	Log(entry *model.AuditEntry) error
	List(limit int) ([]model.AuditEntry, error)
}

type AuditRepository struct {
	DB *sql.DB
}

func (r *AuditRepository) Log(entry *model.AuditEntry) error {
	entry.CreatedAt = time.Now()
	query := `
        INSERT INTO audit_log (actor, action, entity, detail, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	return r.DB.QueryRow(query, entry.Actor, entry.Action, entry.Entity, entry.Detail, entry.CreatedAt).Scan(&entry.ID)
}

func (r *AuditRepository) List(limit int) ([]model.AuditEntry, error) {
	if limit < 1 {
		limit = 100
	}
	query := `SELECT id, actor, action, entity, detail, created_at FROM audit_log ORDER BY id DESC LIMIT $1`
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.AuditEntry{}
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Entity, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ AuditRepositoryInterface = (*AuditRepository)(nil)
