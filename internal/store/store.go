// Package store persists loans, custom priorities, plan overrides and the
// payment ledger in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a loan ID does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQLite loan database.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Open opens or creates the database at dbPath and applies pending migrations.
func Open(dbPath string, logger logrus.FieldLogger) (*Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening loan db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening loan db: %w", err)
	}

	logger.WithField("path", dbPath).Debug("loan store opened")
	return &Store{db: db, log: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
