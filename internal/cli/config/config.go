package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/foodcritic-dev/foodcritic/internal/cli/places"
)

const ConfigFileName = "foodcritic.yaml"

// Server represents a foodcritic API server
type Server struct {
	URL   string `yaml:"url" validate:"required,url"`
	Alias string `yaml:"alias" validate:"required"`
}

// Config represents the project configuration file
type Config struct {
	Servers         []Server         `yaml:"servers" validate:"dive"`
	DefaultLocation *places.Location `yaml:"defaultLocation,omitempty"`
	SearchRadius    int              `yaml:"searchRadius,omitempty" validate:"omitempty,min=1,max=50000"`
}

// DefaultConfig returns a configuration pointing at a local backend
func DefaultConfig() *Config {
	return &Config{
		Servers: []Server{
			{
				URL:   "http://localhost:8080/api",
				Alias: "local",
			},
		},
		SearchRadius: places.DefaultRadius,
	}
}

// FindConfigFile searches for foodcritic.yaml in current directory and parent directories
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found in %s or any parent directory", ConfigFileName, currentDir)
}

// Load reads and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from current directory or parent directories
func LoadFromCurrentDir() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks server entries and the search radius
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	seen := make(map[string]bool, len(c.Servers))
	for _, server := range c.Servers {
		if seen[server.Alias] {
			return fmt.Errorf("invalid %s: duplicate server alias '%s'", ConfigFileName, server.Alias)
		}
		seen[server.Alias] = true
	}
	return nil
}

// GetServerByAlias returns a server by its alias
func (c *Config) GetServerByAlias(alias string) (*Server, error) {
	for i := range c.Servers {
		if c.Servers[i].Alias == alias {
			return &c.Servers[i], nil
		}
	}
	return nil, fmt.Errorf("server with alias '%s' not found", alias)
}

// GetServerByURL returns a server by its API URL, ignoring a trailing slash
func (c *Config) GetServerByURL(url string) (*Server, error) {
	want := strings.TrimRight(url, "/")
	for i := range c.Servers {
		if strings.TrimRight(c.Servers[i].URL, "/") == want {
			return &c.Servers[i], nil
		}
	}
	return nil, fmt.Errorf("server with URL '%s' not found", url)
}

// GetDefaultServer returns the first server in the list
func (c *Config) GetDefaultServer() (*Server, error) {
	if len(c.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured in %s", ConfigFileName)
	}
	return &c.Servers[0], nil
}

// Location returns the configured fallback search location
func (c *Config) Location() places.Location {
	if c.DefaultLocation == nil {
		return places.DefaultLocation
	}
	return *c.DefaultLocation
}

// Radius returns the configured search radius in metres
func (c *Config) Radius() int {
	if c.SearchRadius <= 0 {
		return places.DefaultRadius
	}
	return c.SearchRadius
}
