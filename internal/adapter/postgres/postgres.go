// Package postgres stores the patient document in a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver

	"patients/internal/domain"
)

// Supported database/sql driver names.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// DB wraps a *sql.DB and implements domain.PatientRepository. The document
// lives in one row of patient_documents keyed by name. The payload column is
// JSON rather than JSONB so key order survives the round trip.
type DB struct {
	sql  *sql.DB
	name string
}

var _ domain.PatientRepository = (*DB)(nil)

// Open connects to PostgreSQL with the given driver, pings, and runs migrations.
func Open(driver, connStr, name string) (*DB, error) {
	if driver == "" {
		driver = DriverPQ
	}
	if driver != DriverPQ && driver != DriverPGX {
		return nil, fmt.Errorf("unsupported postgres driver %q", driver)
	}
	s, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := New(s, name)
	if err := d.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an open connection pool. name selects the document row.
func New(s *sql.DB, name string) *DB {
	if name == "" {
		name = "patients"
	}
	return &DB{sql: s, name: name}
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Migrate creates the document table if needed.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS patient_documents (name TEXT PRIMARY KEY, payload JSON NOT NULL, updated_at TIMESTAMPTZ NOT NULL);")
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Load reads and decodes the document row.
func (d *DB) Load(ctx context.Context) (*domain.Collection, error) {
	var payload []byte
	err := d.sql.QueryRowContext(ctx,
		"SELECT payload FROM patient_documents WHERE name = $1;", d.name,
	).Scan(&payload)
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
		"INSERT INTO patient_documents(name, payload, updated_at) VALUES($1, $2, $3) ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at;",
		d.name, string(b), time.Now().UTC(),
	)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}
