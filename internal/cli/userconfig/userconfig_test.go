package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectedServerRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(DirEnv, "")

	selected, err := GetSelectedServer()
	require.NoError(t, err)
	assert.Empty(t, selected)

	require.NoError(t, SetSelectedServer("http://localhost:8080/api"))

	selected, err = GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", selected)

	_, err = os.Stat(filepath.Join(home, ".config", "foodcritic", "config.json"))
	assert.NoError(t, err)
}

func TestLoad_Corrupt(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(DirEnv, "")

	path, err := GetConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err = Load()
	assert.Error(t, err)
}

func TestDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)

	require.NoError(t, SetSelectedServer("https://api.example.com/api"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", cfg.SelectedServerURL)
	assert.False(t, cfg.SelectedAt.IsZero())

	_, err = os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "config.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestSetSelectedServer_Clear(t *testing.T) {
	t.Setenv(DirEnv, t.TempDir())

	require.NoError(t, SetSelectedServer("http://localhost:8080/api"))
	require.NoError(t, SetSelectedServer(""))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.SelectedServerURL)
	assert.True(t, cfg.SelectedAt.IsZero())
}
