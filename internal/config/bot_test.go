package config

import "testing"

func TestLoadBotDefaults(t *testing.T) {
	cfg, err := LoadBot()
	if err != nil {
		t.Fatalf("LoadBot() error = %v", err)
	}
	if cfg.Bots != 4 || cfg.Hands != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.BuyIn != "100" {
		t.Fatalf("BuyIn = %q, want 100", cfg.BuyIn)
	}
}

func TestLoadBotOverrides(t *testing.T) {
	t.Setenv("BOT_COUNT", "6")
	t.Setenv("BOT_HANDS", "20")
	t.Setenv("BOT_SEED", "42")

	cfg, err := LoadBot()
	if err != nil {
		t.Fatalf("LoadBot() error = %v", err)
	}
	if cfg.Bots != 6 || cfg.Hands != 20 || cfg.Seed != 42 {
		t.Fatalf("unexpected bot config: %+v", cfg)
	}
}

func TestLoadBotRejectsBadNumber(t *testing.T) {
	t.Setenv("BOT_COUNT", "many")
	if _, err := LoadBot(); err == nil {
		t.Fatal("LoadBot() expected error, got nil")
	}
}
