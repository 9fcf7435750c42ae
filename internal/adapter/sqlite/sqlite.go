// Package sqlite stores the patient document in a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"patients/internal/domain"
)

// DB persists the document as one row of patient_documents.
type DB struct {
	sql  *sql.DB
	name string
}

var _ domain.PatientRepository = (*DB)(nil)

// Open opens (creating if needed) the database at path and ensures the table exists.
func Open(path, name string) (*DB, error) {
	if path == "" {
		path = "patients.db"
	}
	if name == "" {
		name = "patients"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	s, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite permits one writer at a time.
	s.SetMaxOpenConns(1)

	if _, err := s.Exec(`CREATE TABLE IF NOT EXISTS patient_documents (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create patient_documents table: %w", err)
	}
	return &DB{sql: s, name: name}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Load reads and decodes the document row.
func (d *DB) Load(ctx context.Context) (*domain.Collection, error) {
	var payload []byte
	err := d.sql.QueryRowContext(ctx, `SELECT payload FROM patient_documents WHERE name = ?`, d.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.StorageError{Op: "load", Err: fmt.Errorf("row %q: %w", d.name, domain.ErrDocumentNotFound)}
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	c, err := domain.DecodeCollection(payload)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	return c, nil
}

// Save upserts the document row.
func (d *DB) Save(ctx context.Context, c *domain.Collection) error {
	b, err := domain.EncodeCollection(c)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO patient_documents(name, payload, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		d.name, b, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}
