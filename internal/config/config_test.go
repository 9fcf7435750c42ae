package config

import (
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Storage.Key != "patients" {
		t.Errorf("Storage.Key = %q; want patients", cfg.Storage.Key)
	}
	if cfg.Storage.Driver != DriverFile || cfg.Storage.FilePath != "patients.json" {
		t.Errorf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if !cfg.Storage.CreateIfMissing {
		t.Error("expected CreateIfMissing by default")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("unexpected log defaults: %q %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"ADDR":              ":9090",
		"STORAGE_DRIVER":    "REDIS",
		"STORAGE_KEY":       "clinic",
		"REDIS_ADDR":        "redis:6379",
		"REDIS_DB":          "3",
		"CREATE_IF_MISSING": "false",
		"SHUTDOWN_TIMEOUT":  "2s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Storage.Driver != DriverRedis || cfg.Storage.Key != "clinic" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Storage.RedisAddr != "redis:6379" || cfg.Storage.RedisDB != 3 {
		t.Fatalf("unexpected redis config: %+v", cfg.Storage)
	}
	if cfg.Storage.CreateIfMissing {
		t.Fatal("expected CreateIfMissing=false")
	}
	if cfg.ShutdownTimeout != 2*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"postgres without url", map[string]string{"STORAGE_DRIVER": "postgres"}},
		{"bad pg driver", map[string]string{"STORAGE_DRIVER": "postgres", "DATABASE_URL": "postgres://x", "PG_DRIVER": "mysql"}},
		{"s3 without bucket", map[string]string{"STORAGE_DRIVER": "s3"}},
		{"bad bool", map[string]string{"CREATE_IF_MISSING": "maybe"}},
		{"bad redis db", map[string]string{"REDIS_DB": "zero"}},
		{"bad duration", map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{"negative duration", map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadFrom(envMap(tc.env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFrom_Postgres(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"STORAGE_DRIVER": "postgres",
		"DATABASE_URL":   "postgres://localhost/patients?sslmode=disable",
		"PG_DRIVER":      "pgx",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.PostgresDriver != "pgx" {
		t.Fatalf("PostgresDriver = %q", cfg.Storage.PostgresDriver)
	}
}
