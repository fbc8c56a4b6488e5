package config_test

import (
	"testing"
	"time"

	"github.com/magonotec/magonotec-api/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REPLY_API_BASE_URL", "")
	t.Setenv("REPLY_TIMEOUT_SECONDS", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("GREETING_CHECK_MINUTES", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Reply.Enabled() {
		t.Fatal("reply backend should be disabled without a base URL")
	}
	if cfg.Reply.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v, want 30s", cfg.Reply.Timeout)
	}
	if cfg.Storage.Path != "magonotec.db" {
		t.Fatalf("Path = %q", cfg.Storage.Path)
	}
	if cfg.Greeting.CheckInterval != 5*time.Minute {
		t.Fatalf("CheckInterval = %v, want 5m", cfg.Greeting.CheckInterval)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REPLY_API_BASE_URL", "https://magonotec-api.onrender.com/")
	t.Setenv("REPLY_TIMEOUT_SECONDS", "10")
	t.Setenv("DB_PATH", "/tmp/widget.db")
	t.Setenv("GREETING_CHECK_MINUTES", "1")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Fatalf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Reply.BaseURL != "https://magonotec-api.onrender.com" {
		t.Fatalf("BaseURL = %q, trailing slash should be trimmed", cfg.Reply.BaseURL)
	}
	if !cfg.Reply.Enabled() {
		t.Fatal("reply backend should be enabled")
	}
	if cfg.Reply.Timeout != 10*time.Second {
		t.Fatalf("Timeout = %v", cfg.Reply.Timeout)
	}
	if cfg.Greeting.CheckInterval != time.Minute {
		t.Fatalf("CheckInterval = %v", cfg.Greeting.CheckInterval)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "not a port")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for PORT with spaces")
	}

	t.Setenv("PORT", "8080")
	t.Setenv("REPLY_TIMEOUT_SECONDS", "zero")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for non-numeric timeout")
	}

	t.Setenv("REPLY_TIMEOUT_SECONDS", "30")
	t.Setenv("GREETING_CHECK_MINUTES", "-5")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for negative cadence")
	}
}
