// Package redis stores the patient document under a single Redis key.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"patients/internal/domain"
)

// Store implements domain.PatientRepository on one Redis string key.
type Store struct {
	client *goredis.Client
	key    string
}

var _ domain.PatientRepository = (*Store)(nil)

// Config holds the connection parameters.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a go-redis client and pings it.
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// New returns a Store keeping the document at key.
func New(client *goredis.Client, key string) *Store {
	if key == "" {
		key = "patients"
	}
	return &Store{client: client, key: key}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Load reads and decodes the document.
func (s *Store) Load(ctx context.Context) (*domain.Collection, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, &domain.StorageError{Op: "load", Err: fmt.Errorf("key %q: %w", s.key, domain.ErrDocumentNotFound)}
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	c, err := domain.DecodeCollection(b)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Err: err}
	}
	return c, nil
}

// Save overwrites the document with no expiry.
func (s *Store) Save(ctx context.Context, c *domain.Collection) error {
	b, err := domain.EncodeCollection(c)
	if err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return &domain.StorageError{Op: "save", Err: err}
	}
	return nil
}
