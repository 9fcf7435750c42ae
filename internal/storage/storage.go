// Package storage opens the configured patient document backend.
package storage

import (
	"context"
	"errors"
	"fmt"

	"patients/internal/adapter/file"
	"patients/internal/adapter/memory"
	"patients/internal/adapter/postgres"
	"patients/internal/adapter/redis"
	"patients/internal/adapter/s3"
	"patients/internal/adapter/sqlite"
	"patients/internal/config"
	"patients/internal/domain"
)

// Open constructs the repository selected by cfg.Driver. The returned close
// function releases any connections and is never nil.
func Open(ctx context.Context, cfg config.StorageConfig) (domain.PatientRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverFile, "":
		return file.New(cfg.FilePath), noop, nil
	case config.DriverMemory:
		return memory.New(), noop, nil
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.PostgresDriver, cfg.DatabaseURL, cfg.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, db.Close, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, cfg.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, db.Close, nil
	case config.DriverRedis:
		client, err := redis.NewClient(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open redis: %w", err)
		}
		st := redis.New(client, cfg.Key)
		return st, st.Close, nil
	case config.DriverS3:
		st, err := s3.New(ctx, s3.Config{
			Bucket:          cfg.S3Bucket,
			Key:             cfg.Key,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open s3: %w", err)
		}
		return st, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// EnsureDocument writes an empty collection when the backend has no document
// yet. It reports whether a document was created.
func EnsureDocument(ctx context.Context, repo domain.PatientRepository) (bool, error) {
	_, err := repo.Load(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		return false, err
	}
	if err := repo.Save(ctx, domain.NewCollection()); err != nil {
		return false, err
	}
	return true, nil
}
