package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DATABASE", "buildnet.db")
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Expected default port 3000, got %s", cfg.Port)
	}
	if cfg.ResetTokenTTL != 300*time.Second {
		t.Errorf("Expected reset token ttl 300s, got %v", cfg.ResetTokenTTL)
	}
	if cfg.PostsPerPage != 10 {
		t.Errorf("Expected 10 posts per page, got %d", cfg.PostsPerPage)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("DB_DATABASE", "buildnet.db")
	t.Setenv("SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected an error without SECRET_KEY")
	}
}

func TestLoadEnvValues(t *testing.T) {
	t.Setenv("DB_DATABASE", "buildnet")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("RESET_TOKEN_TTL", "600")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ADMIN_EMAILS", "root@example.com, boss@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ResetTokenTTL != 600*time.Second {
		t.Errorf("Expected 600s, got %v", cfg.ResetTokenTTL)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("Expected 2h, got %v", cfg.SessionTTL)
	}
	if !cfg.IsAdminEmail("BOSS@example.com") {
		t.Error("Expected boss@example.com to be an admin email")
	}
	if cfg.IsAdminEmail("someone@example.com") {
		t.Error("Did not expect someone@example.com to be an admin email")
	}
}

func TestLoadFileOverlay(t *testing.T) {
	t.Setenv("DB_DATABASE", "from-env")
	t.Setenv("SECRET_KEY", "s3cret")

	path := filepath.Join(t.TempDir(), "buildnet.yaml")
	content := "db_type: postgres\ndb_database: from-file\nposts_per_page: 25\nreset_token_ttl: 90s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.DBType != "postgres" || cfg.DBDatabase != "from-file" {
		t.Errorf("Expected file values to win, got %s/%s", cfg.DBType, cfg.DBDatabase)
	}
	if cfg.PostsPerPage != 25 {
		t.Errorf("Expected 25 posts per page, got %d", cfg.PostsPerPage)
	}
	if cfg.ResetTokenTTL != 90*time.Second {
		t.Errorf("Expected 90s, got %v", cfg.ResetTokenTTL)
	}
	if cfg.SecretKey != "s3cret" {
		t.Errorf("Expected env secret to survive the overlay")
	}
}
