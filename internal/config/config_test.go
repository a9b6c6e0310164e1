package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Upload.MaxSize != 2*1024*1024 {
		t.Errorf("expected 2 MiB upload ceiling, got %d", cfg.Upload.MaxSize)
	}
	if cfg.Web.AdminPath != "/admin" {
		t.Errorf("expected /admin, got %q", cfg.Web.AdminPath)
	}
	if cfg.Web.ChatURL != "http://localhost:8080/api/chat" {
		t.Errorf("chat URL should derive from data service URL, got %q", cfg.Web.ChatURL)
	}
	if cfg.Upload.PublicBaseURL != cfg.BaseURL {
		t.Errorf("media base URL should default to BASE_URL, got %q", cfg.Upload.PublicBaseURL)
	}
	if cfg.Admin.Token == "" {
		t.Error("development should get a default edit token")
	}
	if cfg.Web.ClientTimeout != 30*time.Second {
		t.Errorf("unexpected client timeout %v", cfg.Web.ClientTimeout)
	}
}

func TestLoad_ProductionRequiresToken(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("ADMIN_TOKEN", "")
	t.Setenv("ADMIN_TOKEN_HASH", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when no admin token is configured in production")
	}

	t.Setenv("ADMIN_TOKEN_HASH", "$2a$10$abcdefghijklmnopqrstuu")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error with hash configured: %v", err)
	}
}

func TestLoad_RejectsRelativeAdminPath(t *testing.T) {
	t.Setenv("ADMIN_PATH", "admin")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for admin path without leading slash")
	}
}

func TestLoad_TrimsTrailingSlashes(t *testing.T) {
	t.Setenv("DATA_SERVICE_URL", "http://data:8080/")
	t.Setenv("MEDIA_BASE_URL", "https://cdn.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Web.DataServiceURL != "http://data:8080" {
		t.Errorf("unexpected data service URL %q", cfg.Web.DataServiceURL)
	}
	if cfg.Upload.PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("unexpected media base URL %q", cfg.Upload.PublicBaseURL)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "atlas", Password: "p@ss:word", Name: "atlas"}
	dsn := d.DSN()
	if !strings.Contains(dsn, "tcp(db:3306)") {
		t.Errorf("expected default port to be appended, got %q", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime, got %q", dsn)
	}

	d.dsnOverride = "user:pw@tcp(other:3307)/x"
	if d.DSN() != d.dsnOverride {
		t.Error("DATABASE_URL should take precedence")
	}
}
