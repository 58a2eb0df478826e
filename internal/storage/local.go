package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/eliasnord/neonpane/internal/domain"
	"github.com/eliasnord/neonpane/internal/logger"
)

const (
	configDir  = ".neonpane"
	configFile = "config.json"
)

type Config struct {
	Profiles      []domain.Profile `json:"profiles"`
	ActiveProfile string           `json:"active_profile"`
}

// LocalRepository persists credential profiles in a JSON config file under
// the user's home directory.
type LocalRepository struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

func NewLocalRepository() (*LocalRepository, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, configDir, configFile)

	repo := &LocalRepository{
		configPath: configPath,
		config:     &Config{Profiles: []domain.Profile{}},
	}

	if err := repo.ensureConfigDir(); err != nil {
		return nil, err
	}

	if err := repo.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return repo, nil
}

func (r *LocalRepository) ensureConfigDir() error {
	dir := filepath.Dir(r.configPath)
	return os.MkdirAll(dir, 0700)
}

func (r *LocalRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.configPath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, r.config); err != nil {
		logger.LogError("LOAD_CONFIG", r.configPath, err)
		return err
	}

	logger.Log("Config loaded from %s", r.configPath)
	return nil
}

func (r *LocalRepository) save() error {
	data, err := json.MarshalIndent(r.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(r.configPath, data, 0600); err != nil {
		logger.LogError("SAVE_CONFIG", r.configPath, err)
		return err
	}

	return nil
}

func (r *LocalRepository) ListProfiles() ([]domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]domain.Profile, len(r.config.Profiles))
	copy(profiles, r.config.Profiles)
	return profiles, nil
}

func (r *LocalRepository) GetProfile(id string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.config.Profiles {
		if p.ID == id {
			return &p, nil
		}
	}

	return nil, fmt.Errorf("profile not found: %s", id)
}

func (r *LocalRepository) SaveProfile(profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for i, p := range r.config.Profiles {
		if p.ID == profile.ID {
			r.config.Profiles[i] = profile
			found = true
			logger.Log("Updating profile: %s", profile.Name)
			break
		}
	}

	if !found {
		r.config.Profiles = append(r.config.Profiles, profile)
		logger.Log("Adding profile: %s", profile.Name)
	}

	return r.save()
}

func (r *LocalRepository) DeleteProfile(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.config.Profiles {
		if p.ID == id {
			logger.Log("Deleting profile: %s", p.Name)
			r.config.Profiles = append(r.config.Profiles[:i], r.config.Profiles[i+1:]...)
			if r.config.ActiveProfile == id {
				r.config.ActiveProfile = ""
			}
			return r.save()
		}
	}

	return fmt.Errorf("profile not found: %s", id)
}

func (r *LocalRepository) SetActiveProfile(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.config.Profiles {
		if p.ID == id {
			logger.Log("Setting active profile: %s", p.Name)
			for i := range r.config.Profiles {
				r.config.Profiles[i].IsActive = r.config.Profiles[i].ID == id
			}
			r.config.ActiveProfile = id
			return r.save()
		}
	}

	return fmt.Errorf("profile not found: %s", id)
}

func (r *LocalRepository) GetActiveProfile() (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.config.ActiveProfile == "" {
		return nil, fmt.Errorf("no active profile set")
	}

	for _, p := range r.config.Profiles {
		if p.ID == r.config.ActiveProfile {
			return &p, nil
		}
	}

	return nil, fmt.Errorf("active profile not found: %s", r.config.ActiveProfile)
}
