package sqlite

import (
	"context"
	"testing"

	"cafetrack/internal/repository"
)

func TestSettingsGetSet(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))
	ctx := context.Background()

	// Missing keys read as empty, not as an error
	value, err := repo.Get(ctx, repository.SettingTrackingBaseURL)
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if value != "" {
		t.Errorf("missing key = %q, want empty", value)
	}

	if err := repo.Set(ctx, repository.SettingTrackingBaseURL, "https://caf.example.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err = repo.Get(ctx, repository.SettingTrackingBaseURL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != "https://caf.example.com" {
		t.Errorf("value = %q", value)
	}

	// Upsert overwrites
	if err := repo.Set(ctx, repository.SettingTrackingBaseURL, "https://otro.example.com"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	value, _ = repo.Get(ctx, repository.SettingTrackingBaseURL)
	if value != "https://otro.example.com" {
		t.Errorf("value after overwrite = %q", value)
	}
}
