package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ADMIN_PASSCODE", "ADMIN_API_SECRET", "ADMIN_EMAILS",
		"LOGIN_RATE_MAX", "LOGIN_RATE_WINDOW_MS", "REDIS_ADDRESS", "ROUTES_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != ":8080" {
		t.Errorf("Port = %q, want :8080", cfg.Server.Port)
	}
	if cfg.RateLimit.LoginMaxAttempts != 5 {
		t.Errorf("LoginMaxAttempts = %d, want 5", cfg.RateLimit.LoginMaxAttempts)
	}
	if cfg.RateLimit.LoginWindow != 15*time.Minute {
		t.Errorf("LoginWindow = %v, want 15m", cfg.RateLimit.LoginWindow)
	}
	if len(cfg.Routes.AdminOnly) == 0 {
		t.Error("default admin-only route table is empty")
	}
	if cfg.Admin.PrimaryEmail() != "" {
		t.Errorf("PrimaryEmail() = %q, want empty", cfg.Admin.PrimaryEmail())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_PASSCODE", "9999")
	t.Setenv("ADMIN_API_SECRET", "fixed-token")
	t.Setenv("ADMIN_EMAILS", "first@tibrah.app, second@tibrah.app")
	t.Setenv("LOGIN_RATE_MAX", "3")
	t.Setenv("LOGIN_RATE_WINDOW_MS", "60000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != ":9090" {
		t.Errorf("Port = %q, want :9090", cfg.Server.Port)
	}
	if cfg.Admin.Passcode != "9999" {
		t.Errorf("Passcode = %q, want 9999", cfg.Admin.Passcode)
	}
	if cfg.Admin.PrimaryEmail() != "first@tibrah.app" {
		t.Errorf("PrimaryEmail() = %q, want first@tibrah.app", cfg.Admin.PrimaryEmail())
	}
	if len(cfg.Admin.Emails) != 2 {
		t.Errorf("Emails length = %d, want 2", len(cfg.Admin.Emails))
	}
	if cfg.RateLimit.LoginMaxAttempts != 3 {
		t.Errorf("LoginMaxAttempts = %d, want 3", cfg.RateLimit.LoginMaxAttempts)
	}
	if cfg.RateLimit.LoginWindow != time.Minute {
		t.Errorf("LoginWindow = %v, want 1m", cfg.RateLimit.LoginWindow)
	}
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("LOGIN_RATE_MAX", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("Load() with invalid LOGIN_RATE_MAX succeeded, want error")
	}
}

func TestLoadRoutes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")

	content := []byte(`admin_only:
  - /admin
  - /dashboard
authenticated_only:
  - /profile
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write routes file: %v", err)
	}

	routes, err := LoadRoutes(path)
	if err != nil {
		t.Fatalf("LoadRoutes() error = %v", err)
	}

	if len(routes.AdminOnly) != 2 || routes.AdminOnly[1] != "/dashboard" {
		t.Errorf("AdminOnly = %v, want [/admin /dashboard]", routes.AdminOnly)
	}
	if len(routes.AuthenticatedOnly) != 1 || routes.AuthenticatedOnly[0] != "/profile" {
		t.Errorf("AuthenticatedOnly = %v, want [/profile]", routes.AuthenticatedOnly)
	}

	// Omitted lists fall back to defaults
	defaults := DefaultRoutes()
	if len(routes.AuthPages) != len(defaults.AuthPages) {
		t.Errorf("AuthPages = %v, want defaults %v", routes.AuthPages, defaults.AuthPages)
	}
	if len(routes.Excluded) != len(defaults.Excluded) {
		t.Errorf("Excluded = %v, want defaults %v", routes.Excluded, defaults.Excluded)
	}
}

func TestLoadRoutes_MissingFile(t *testing.T) {
	if _, err := LoadRoutes(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadRoutes() for missing file succeeded, want error")
	}
}
