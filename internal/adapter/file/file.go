// Package file stores the patient document as a JSON file on local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"patients/internal/domain"
)

// Store reads and writes one JSON file. Saves go to a temp file in the same
// directory which is synced and renamed over the target, so a crash leaves
// either the old or the new document.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ domain.PatientRepository = (*Store)(nil)

// New returns a Store for the file at path. The file is not touched.
func New(path string) *Store {
	if path == "" {
		path = "patients.json"
	}
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads and decodes the whole file.
func (s *Store) Load(ctx context.Context) (*domain.Collection, error) {
	s.mu.Lock()
	b, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.StorageError{Op: "load", Err: fmt.Errorf("%s: %w", s.path, domain.ErrDocumentNotFound)}
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	c, err := domain.DecodeCollection(b)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: fmt.Errorf("%s: %w", s.path, err)}
	}
	return c, nil
}

// Save encodes c and atomically replaces the file.
func (s *Store) Save(ctx context.Context, c *domain.Collection) error {
	b, err := domain.EncodeCollection(c)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(s.path, b); err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".patients-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
