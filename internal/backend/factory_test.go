package backend

import (
	"context"
	"path/filepath"
	"testing"

	"centesimi/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		BackendType:  "sqlite",
		SQLiteDBPath: "./x.db",
		PostgresDSN:  "postgres://localhost/centesimi",
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "./x.db" {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{BackendType: "mongo"}); err == nil {
		t.Error("FromAppConfig() expected an error for an unknown backend type")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) expected an error")
	}
}

func TestFactoryCreatesBackends(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		res, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		if res.Store == nil {
			t.Fatal("CreateBackend() returned a nil store")
		}
		if err := res.Store.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := factory.CreateBackend(ctx, Config{
			Type:         SQLiteBackend,
			SQLiteDBPath: filepath.Join(t.TempDir(), "test.db"),
		})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		t.Cleanup(func() {
			if res.Cleanup != nil {
				_ = res.Cleanup()
			}
		})
		if err := res.Store.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})

	t.Run("sqlite without path", func(t *testing.T) {
		if _, err := factory.CreateBackend(ctx, Config{Type: SQLiteBackend}); err == nil {
			t.Error("CreateBackend() expected a validation error")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := factory.CreateBackend(ctx, Config{Type: "cassette"}); err == nil {
			t.Error("CreateBackend() expected an error for an unknown type")
		}
	})
}
