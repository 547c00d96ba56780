// Package userconfig persists per-user CLI preferences that do not
// belong in a project's foodcritic.yaml.
package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DirEnv overrides the directory holding the preferences file.
const DirEnv = "FOODCRITIC_CONFIG_DIR"

const fileName = "config.json"

// UserConfig is the content of ~/.config/foodcritic/config.json.
type UserConfig struct {
	SelectedServerURL string    `json:"selected_server_url,omitempty"`
	SelectedAt        time.Time `json:"selected_at,omitzero"`
}

// Dir returns the directory holding the preferences file.
func Dir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "foodcritic"), nil
}

// GetConfigPath returns the path of the preferences file.
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the preferences file. A missing file yields zero preferences.
func Load() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &UserConfig{}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%s is not valid JSON: %w", path, err)
	}
	return cfg, nil
}

// Save replaces the preferences file with cfg. The file is written to a
// sibling and renamed so a crash never leaves it half written.
func Save(cfg *UserConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func update(mutate func(*UserConfig)) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	mutate(cfg)
	return Save(cfg)
}

// SetSelectedServer remembers serverURL as the default server. An empty
// URL forgets the current choice.
func SetSelectedServer(serverURL string) error {
	return update(func(cfg *UserConfig) {
		cfg.SelectedServerURL = serverURL
		cfg.SelectedAt = time.Time{}
		if serverURL != "" {
			cfg.SelectedAt = time.Now().UTC()
		}
	})
}

// GetSelectedServer returns the remembered server URL, or "" when none is set.
func GetSelectedServer() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.SelectedServerURL, nil
}
