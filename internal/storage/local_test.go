package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eliasnord/neonpane/internal/domain"
)

func newTestRepository(t *testing.T) *LocalRepository {
	t.Helper()

	tmpDir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })

	repo, err := NewLocalRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	return repo
}

func TestSaveAndListProfiles(t *testing.T) {
	repo := newTestRepository(t)

	profile := domain.Profile{
		ID:      "test-id",
		Name:    "Staging",
		Token:   "napi_test123",
		BaseURL: "https://console.example.dev",
	}

	if err := repo.SaveProfile(profile); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}

	profiles, err := repo.ListProfiles()
	if err != nil {
		t.Fatalf("Failed to list profiles: %v", err)
	}

	if len(profiles) != 1 {
		t.Fatalf("Expected 1 profile, got %d", len(profiles))
	}
	if profiles[0].Name != profile.Name {
		t.Errorf("Expected name %s, got %s", profile.Name, profiles[0].Name)
	}
	if profiles[0].Token != profile.Token {
		t.Errorf("Expected token %s, got %s", profile.Token, profiles[0].Token)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newTestRepository(t)

	original := domain.Profile{ID: "test-id", Name: "Original", Token: "napi_original"}
	if err := repo.SaveProfile(original); err != nil {
		t.Fatalf("Failed to save original profile: %v", err)
	}

	updated := domain.Profile{ID: "test-id", Name: "Updated", Token: "napi_updated"}
	if err := repo.SaveProfile(updated); err != nil {
		t.Fatalf("Failed to update profile: %v", err)
	}

	profiles, err := repo.ListProfiles()
	if err != nil {
		t.Fatalf("Failed to list profiles: %v", err)
	}

	if len(profiles) != 1 {
		t.Fatalf("Expected 1 profile after update, got %d", len(profiles))
	}
	if profiles[0].Name != "Updated" {
		t.Errorf("Expected updated name, got %s", profiles[0].Name)
	}
	if profiles[0].Token != "napi_updated" {
		t.Errorf("Expected updated token, got %s", profiles[0].Token)
	}
}

func TestDeleteProfileClearsActive(t *testing.T) {
	repo := newTestRepository(t)

	profile := domain.Profile{ID: "test-id", Name: "Staging", Token: "napi_x"}
	if err := repo.SaveProfile(profile); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}
	if err := repo.SetActiveProfile("test-id"); err != nil {
		t.Fatalf("Failed to set active profile: %v", err)
	}

	if err := repo.DeleteProfile("test-id"); err != nil {
		t.Fatalf("Failed to delete profile: %v", err)
	}

	profiles, err := repo.ListProfiles()
	if err != nil {
		t.Fatalf("Failed to list profiles: %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("Expected 0 profiles after delete, got %d", len(profiles))
	}

	if _, err := repo.GetActiveProfile(); err == nil {
		t.Error("Expected no active profile after deleting it")
	}
}

func TestSetActiveProfile(t *testing.T) {
	repo := newTestRepository(t)

	for _, p := range []domain.Profile{
		{ID: "a", Name: "A", Token: "t1"},
		{ID: "b", Name: "B", Token: "t2"},
	} {
		if err := repo.SaveProfile(p); err != nil {
			t.Fatalf("Failed to save profile %s: %v", p.ID, err)
		}
	}

	if err := repo.SetActiveProfile("b"); err != nil {
		t.Fatalf("Failed to set active profile: %v", err)
	}

	active, err := repo.GetActiveProfile()
	if err != nil {
		t.Fatalf("Failed to get active profile: %v", err)
	}
	if active.ID != "b" {
		t.Errorf("Expected active profile 'b', got %s", active.ID)
	}
	if !active.IsActive {
		t.Error("Expected active flag set")
	}

	profiles, _ := repo.ListProfiles()
	for _, p := range profiles {
		if p.ID == "a" && p.IsActive {
			t.Error("Expected previous profile to be deactivated")
		}
	}
}

func TestConfigFilePath(t *testing.T) {
	tmpDir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", oldHome)

	repo, err := NewLocalRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, ".neonpane", "config.json")
	if repo.configPath != expectedPath {
		t.Errorf("Expected config path %s, got %s", expectedPath, repo.configPath)
	}
}
