package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foodcritic-dev/foodcritic/internal/cli/places"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
servers:
  - url: http://localhost:8080/api
    alias: local
  - url: https://api.foodcritic.example/api
    alias: prod
defaultLocation:
  latitude: 40.7128
  longitude: -74.006
searchRadius: 5000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Servers) != 2 {
		t.Fatalf("servers = %d, want 2", len(cfg.Servers))
	}

	server, err := cfg.GetServerByAlias("prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.URL != "https://api.foodcritic.example/api" {
		t.Errorf("url = %q", server.URL)
	}

	if got := cfg.Location(); got.Latitude != 40.7128 || got.Longitude != -74.006 {
		t.Errorf("location = %v", got)
	}
	if cfg.Radius() != 5000 {
		t.Errorf("radius = %d, want 5000", cfg.Radius())
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
servers:
  - url: http://localhost:8080/api
    alias: local
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Location() != places.DefaultLocation {
		t.Errorf("location = %v, want default", cfg.Location())
	}
	if cfg.Radius() != places.DefaultRadius {
		t.Errorf("radius = %d, want %d", cfg.Radius(), places.DefaultRadius)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		errorContains string
	}{
		{
			name: "missing url",
			content: `
servers:
  - alias: local
`,
			errorContains: "URL",
		},
		{
			name: "bad url",
			content: `
servers:
  - url: not a url
    alias: local
`,
			errorContains: "URL",
		},
		{
			name: "duplicate alias",
			content: `
servers:
  - url: http://a.example/api
    alias: dup
  - url: http://b.example/api
    alias: dup
`,
			errorContains: "duplicate server alias",
		},
		{
			name: "radius too large",
			content: `
servers:
  - url: http://a.example/api
    alias: a
searchRadius: 90000
`,
			errorContains: "SearchRadius",
		},
		{
			name:          "not yaml",
			content:       "servers: [",
			errorContains: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errorContains)
			}
		})
	}
}

func TestSaveAndLoadDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	server, err := cfg.GetDefaultServer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Alias != "local" {
		t.Errorf("alias = %q, want local", server.Alias)
	}
}

func TestFindConfigFile_SearchesParents(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "servers: []\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	path, err := FindConfigFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// macOS temp dirs resolve through /private
	want, _ := filepath.EvalSymlinks(filepath.Join(root, ConfigFileName))
	got, _ := filepath.EvalSymlinks(path)
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestGetServerByURL(t *testing.T) {
	cfg := DefaultConfig()

	server, err := cfg.GetServerByURL("http://localhost:8080/api/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Alias != "local" {
		t.Errorf("alias = %q", server.Alias)
	}

	if _, err := cfg.GetServerByURL("http://elsewhere/api"); err == nil {
		t.Error("expected error for unknown URL")
	}
}

func TestGetDefaultServer_Empty(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.GetDefaultServer(); err == nil {
		t.Error("expected error when no servers are configured")
	}
}
