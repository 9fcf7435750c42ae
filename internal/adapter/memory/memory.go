// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"

	"patients/internal/domain"
)

// DB holds the patient document in process memory. It stores the encoded
// bytes, so every Load returns a freshly decoded collection.
type DB struct {
	mu  sync.Mutex
	doc []byte
}

// Ensure interfaces are met.
var _ domain.PatientRepository = (*DB)(nil)

// New creates an in-memory database holding an empty collection.
func New() *DB {
	return &DB{doc: []byte("{}")}
}

// NewEmpty creates an in-memory database with no document at all; Load
// fails until the first Save.
func NewEmpty() *DB {
	return &DB{}
}

// Load decodes the stored document.
func (db *DB) Load(ctx context.Context) (*domain.Collection, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.doc == nil {
		return nil, &domain.StorageError{Op: "load", Err: domain.ErrDocumentNotFound}
	}
	c, err := domain.DecodeCollection(db.doc)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	return c, nil
}

// Save replaces the stored document.
func (db *DB) Save(ctx context.Context, c *domain.Collection) error {
	b, err := domain.EncodeCollection(c)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.doc = b
	return nil
}

// Document returns a copy of the raw stored bytes.
func (db *DB) Document() []byte {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]byte(nil), db.doc...)
}
