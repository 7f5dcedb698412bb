// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mkanyali/assetcomply-backend/internal/config"
)

// Open connects to the configured database and verifies the connection.
// DB_DRIVER selects postgres (lib/pq) or sqlite3; both accept the $n
// placeholder syntax used by the repositories.
func Open(cfg *config.Config) (*sql.DB, error) {
	var (
		driver string
		dsn    string
	)
	switch cfg.DBDriver {
	case "sqlite3", "sqlite":
		driver = "sqlite3"
		dsn = cfg.DBPath + "?_foreign_keys=on"
	default:
		driver = "postgres"
		dsn = cfg.PostgresDSN()
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return conn, nil
}
