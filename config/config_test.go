package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when file is missing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.ListenAddr != ":8990" || cfg.Store != "sqlite" {
			t.Errorf("Load() = %+v, want defaults", cfg)
		}
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "finboard.yaml")
		content := "listen_addr: \":9000\"\nstore: memory\nlog_level: debug\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.ListenAddr != ":9000" {
			t.Errorf("ListenAddr = %q, want :9000", cfg.ListenAddr)
		}
		if cfg.Store != "memory" {
			t.Errorf("Store = %q, want memory", cfg.Store)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
		// Untouched fields keep their defaults.
		if cfg.IntradayPath != "$.last" {
			t.Errorf("IntradayPath = %q, want default", cfg.IntradayPath)
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "finboard.yaml")
		if err := os.WriteFile(path, []byte("db_path: file.db\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("FINBOARD_DB_PATH", "env.db")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.DBPath != "env.db" {
			t.Errorf("DBPath = %q, want env.db", cfg.DBPath)
		}
	})

	t.Run("unknown store is rejected", func(t *testing.T) {
		t.Setenv("FINBOARD_STORE", "postgres")
		if _, err := Load(""); err == nil {
			t.Error("Load() with unknown store succeeded, want error")
		}
	})

	t.Run("unreadable yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte(":\tnot yaml"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("Load() with invalid yaml succeeded, want error")
		}
	})
}
