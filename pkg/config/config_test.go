package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() {
		t.Fatal("expected IsProd to be true")
	}

	if cfg.Catalog.MenuURL != "https://catalog.example.com/menu" {
		t.Fatalf("unexpected menu URL %q", cfg.Catalog.MenuURL)
	}
	if got := cfg.Catalog.CacheTTL; got != 5*time.Minute {
		t.Fatalf("expected default cache TTL 5m, got %v", got)
	}

	if cfg.Session.IdleTTL != 30*time.Minute {
		t.Fatalf("expected default idle TTL 30m, got %v", cfg.Session.IdleTTL)
	}
	if cfg.Session.MinScore != 0.3 {
		t.Fatalf("expected default min score 0.3, got %v", cfg.Session.MinScore)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("PIZZA_CATALOG_MENU_URL"); err != nil {
		t.Fatalf("failed to unset menu url: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestRedisEnabled(t *testing.T) {
	if (RedisConfig{}).Enabled() {
		t.Fatal("empty redis config should be disabled")
	}
	if !(RedisConfig{URL: "redis://localhost:6379/0"}).Enabled() {
		t.Fatal("redis config with URL should be enabled")
	}
	if !(RedisConfig{Address: "localhost:6379"}).Enabled() {
		t.Fatal("redis config with address should be enabled")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("PIZZA_APP_ENV", "prod")
	t.Setenv("PIZZA_APP_PORT", "8081")
	t.Setenv("PIZZA_CATALOG_MENU_URL", "https://catalog.example.com/menu")
	t.Setenv("PIZZA_CATALOG_ORDER_URL", "https://catalog.example.com/orders")
}
