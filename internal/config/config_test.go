package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEBUG", "true")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_PATH", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.JWT.ExpirationHours != 24 {
		t.Errorf("expirationHours = %d, want 24", cfg.JWT.ExpirationHours)
	}
	if cfg.Database.Path != "data/cafetrack.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"debug": true, "server": {"port": 9000}, "business": {"name": "CafeTrack"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, env must win over file", cfg.Server.Port)
	}
	if cfg.Business.Name != "CafeTrack" {
		t.Errorf("business name = %q", cfg.Business.Name)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("jwt secret = %q", cfg.JWT.Secret)
	}
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("DEBUG", "false")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for empty JWT secret outside debug")
	}
}
