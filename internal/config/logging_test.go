package config

import "testing"

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "info" || cfg.Pretty || cfg.File != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxMB != 10 {
		t.Fatalf("MaxMB = %d, want 10", cfg.MaxMB)
	}
}

func TestLoadLogParse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("LOG_FILE", "/var/log/poker/engine.log")
	t.Setenv("LOG_MAX_MB", "64")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "debug" || !cfg.Pretty || cfg.File != "/var/log/poker/engine.log" || cfg.MaxMB != 64 {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}

func TestLoadAppNeedsDatabase(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	if _, err := LoadApp(); err == nil {
		t.Fatal("LoadApp() expected error without POSTGRES_DSN")
	}
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/poker?sslmode=disable")
	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if cfg.Engine.ReformThreshold != 5 || cfg.Server.HTTPAddr != ":8080" {
		t.Fatalf("unexpected app config: %+v", cfg)
	}
}
