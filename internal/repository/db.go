package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

type Config struct {
	DSN         string
	DialTimeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS medical_documents (
	id            TEXT PRIMARY KEY,
	document_type TEXT NOT NULL,
	file_name     TEXT NOT NULL,
	stored_path   TEXT NOT NULL,
	file_size     INTEGER NOT NULL,
	notes         TEXT NOT NULL DEFAULT '',
	uploaded_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_medical_documents_type ON medical_documents(document_type);
`

// Open connects to the SQLite store and applies the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to document store", "dsn", cfg.DSN)

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		logger.Error("failed to open document store", "error", err)
		return nil, err
	}
	// modernc sqlite serializes writes; one connection avoids lock churn.
	db.SetMaxOpenConns(1)

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping document store", "error", err)
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.Error("failed to apply schema", "error", err)
		_ = db.Close()
		return nil, err
	}

	logger.Info("document store ready")
	return db, nil
}

// Close closes the database connection gracefully
func Close(db *sql.DB, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close document store", "error", err)
		return
	}
	logger.Info("document store closed")
}

// HealthCheck pings the store to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
