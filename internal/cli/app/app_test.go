package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodcritic-dev/foodcritic/internal/cli/auth"
	"github.com/foodcritic-dev/foodcritic/internal/cli/config"
	"github.com/foodcritic-dev/foodcritic/internal/cli/places"
	"github.com/foodcritic-dev/foodcritic/internal/cli/session"
	envconfig "github.com/foodcritic-dev/foodcritic/internal/config"
)

func testEnv() *envconfig.Config {
	return &envconfig.Config{
		API:     envconfig.APIConfig{Timeout: 5 * time.Second},
		Session: envconfig.SessionConfig{Store: "file"},
	}
}

func persisted(t *testing.T, token string) *session.MemoryStorage {
	t.Helper()
	storage := session.NewMemoryStorage()
	user, err := json.Marshal(session.UserProfile{ID: 1, Username: "alice", Email: "a@x.io", Role: session.RoleUser})
	require.NoError(t, err)
	require.NoError(t, storage.Set(session.TokenKey, token))
	require.NoError(t, storage.Set(session.UserKey, string(user)))
	return storage
}

func open(t *testing.T, srv *httptest.Server, storage session.Storage, validate bool, stderr *bytes.Buffer) *App {
	t.Helper()
	a, err := Open(t.Context(), Options{
		Env:             testEnv(),
		Project:         config.DefaultConfig(),
		Server:          &config.Server{URL: srv.URL + "/api", Alias: "test"},
		Storage:         storage,
		ValidateSession: validate,
		Stderr:          stderr,
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestOpen_RestoresAndValidatesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/profile", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(session.UserProfile{ID: 1, Username: "alice", Email: "new@x.io", Role: session.RoleAdmin})
	}))
	defer srv.Close()

	var stderr bytes.Buffer
	a := open(t, srv, persisted(t, "abc"), true, &stderr)

	user, err := a.RequireSession(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", user.Email)
	assert.Equal(t, session.RoleAdmin, user.Role)
	assert.Empty(t, stderr.String())
}

func TestOpen_RejectedTokenEndsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var stderr bytes.Buffer
	storage := persisted(t, "abc")
	a := open(t, srv, storage, true, &stderr)

	_, err := a.RequireSession(t.Context())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Contains(t, stderr.String(), session.ExpiredMessage)

	_, ok, _ := storage.Get(session.TokenKey)
	assert.False(t, ok)
}

func TestOpen_WithoutValidationMakesNoRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	a := open(t, srv, persisted(t, "abc"), false, &bytes.Buffer{})

	user, err := a.RequireSession(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestRequireSession_Anonymous(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	a := open(t, srv, session.NewMemoryStorage(), true, &bytes.Buffer{})

	_, err := a.RequireSession(t.Context())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestOpen_EnvURLOverridesProject(t *testing.T) {
	env := testEnv()
	env.API.URL = "http://env.example/api"

	a, err := Open(t.Context(), Options{
		Env:     env,
		Project: config.DefaultConfig(),
		Storage: session.NewMemoryStorage(),
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "http://env.example/api", a.Client.BaseURL())
	assert.Equal(t, envServerAlias, a.Server.Alias)
}

func TestOpen_AliasBeatsEnvURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	env := testEnv()
	env.API.URL = "http://env.example/api"

	project := &config.Config{Servers: []config.Server{
		{URL: "http://a.example/api", Alias: "a"},
		{URL: "http://b.example/api", Alias: "b"},
	}}

	a, err := Open(t.Context(), Options{
		Env:         env,
		Project:     project,
		ServerAlias: "b",
		Storage:     session.NewMemoryStorage(),
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "http://b.example/api", a.Client.BaseURL())
}

func TestOpenStorage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	storage, err := openStorage("file", "http://localhost:8080/api")
	require.NoError(t, err)
	assert.IsType(t, &auth.FileStorage{}, storage)

	storage, err = openStorage("keyring", "http://localhost:8080/api")
	require.NoError(t, err)
	assert.IsType(t, &auth.KeyringStorage{}, storage)

	_, err = openStorage("cloud", "http://localhost:8080/api")
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	here := places.Location{Latitude: 51.5, Longitude: -0.12}
	project := config.DefaultConfig()
	project.DefaultLocation = &here

	a := &App{Project: project}

	loc, fromUser := a.Location(t.Context(), nil)
	assert.Equal(t, here, loc)
	assert.False(t, fromUser)

	user := places.Location{Latitude: 1, Longitude: 2}
	loc, fromUser = a.Location(t.Context(), &places.StaticLocator{Position: &user})
	assert.Equal(t, user, loc)
	assert.True(t, fromUser)
}
