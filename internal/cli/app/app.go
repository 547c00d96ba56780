// Package app wires one CLI invocation together: the API server to talk to,
// the persisted session, the session-expiry listener and the API client.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/foodcritic-dev/foodcritic/internal/cli/auth"
	"github.com/foodcritic-dev/foodcritic/internal/cli/client"
	"github.com/foodcritic-dev/foodcritic/internal/cli/config"
	"github.com/foodcritic-dev/foodcritic/internal/cli/places"
	"github.com/foodcritic-dev/foodcritic/internal/cli/serverselect"
	"github.com/foodcritic-dev/foodcritic/internal/cli/session"
	envconfig "github.com/foodcritic-dev/foodcritic/internal/config"
)

// ErrNotAuthenticated is returned when a command needs a session and there is none
var ErrNotAuthenticated = errors.New("not logged in, run 'foodcritic login' first")

const envServerAlias = "env"

// Options control how Open assembles an App. Zero values resolve everything
// from the environment, foodcritic.yaml and the user config.
type Options struct {
	// ServerAlias picks a server from foodcritic.yaml
	ServerAlias string
	// Env replaces environment configuration
	Env *envconfig.Config
	// Project replaces foodcritic.yaml
	Project *config.Config
	// Server skips server resolution
	Server *config.Server
	// Storage replaces the keyring/file session storage
	Storage session.Storage
	// HTTPClient replaces the default HTTP client; it is wrapped, not mutated
	HTTPClient *http.Client
	// ValidateSession probes the restored token against the profile endpoint
	ValidateSession bool
	// Stderr receives session notices. Defaults to os.Stderr.
	Stderr io.Writer
	Log    zerolog.Logger
}

// App is everything a command needs to talk to the backend
type App struct {
	Env     *envconfig.Config
	Project *config.Config
	Server  *config.Server
	Store   *session.Store
	Client  *client.Client
	Log     zerolog.Logger

	listener *session.Listener
	stderr   io.Writer
}

// Open restores the session for the resolved server and starts listening for
// session expiry. Callers must Close the App.
func Open(ctx context.Context, opts Options) (*App, error) {
	env := opts.Env
	if env == nil {
		var err error
		if env, err = envconfig.Load(); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	project, server, err := resolveServer(env, opts)
	if err != nil {
		return nil, err
	}

	storage := opts.Storage
	if storage == nil {
		if storage, err = openStorage(env.Session.Store, server.URL); err != nil {
			return nil, err
		}
	}

	store := session.NewStore(storage, session.WithLogger(opts.Log))

	a := &App{
		Env:     env,
		Project: project,
		Server:  server,
		Store:   store,
		Log:     opts.Log,
		stderr:  stderr,
	}

	a.listener = session.Listen(store,
		session.NotifierFunc(a.notify),
		session.NavigatorFunc(a.navigate),
		session.WithListenerLogger(opts.Log),
	)

	a.Client = client.New(server.URL,
		client.WithSession(store),
		client.WithExpirySignal(store),
		client.WithLogger(opts.Log),
		client.WithTimeout(env.API.Timeout),
	)
	if opts.HTTPClient != nil {
		a.Client.SetHTTPClient(opts.HTTPClient)
	}

	if opts.ValidateSession {
		store.Hydrate(ctx, a.Client)
	} else {
		store.Hydrate(ctx, nil)
	}

	return a, nil
}

// resolveServer picks the API server: an explicit server, then
// FOODCRITIC_API_URL (unless an alias was asked for), then foodcritic.yaml.
func resolveServer(env *envconfig.Config, opts Options) (*config.Config, *config.Server, error) {
	project := opts.Project
	if project == nil {
		loaded, err := config.LoadFromCurrentDir()
		switch {
		case err == nil:
			project = loaded
		case env.API.URL != "" && opts.ServerAlias == "":
			project = config.DefaultConfig()
		case opts.Server != nil:
			project = config.DefaultConfig()
		default:
			return nil, nil, fmt.Errorf("failed to load config: %w\nRun 'foodcritic init' to create a configuration file", err)
		}
	}

	if opts.Server != nil {
		return project, opts.Server, nil
	}

	if env.API.URL != "" && opts.ServerAlias == "" {
		return project, &config.Server{URL: env.API.URL, Alias: envServerAlias}, nil
	}

	server, err := serverselect.ResolveServer(project, opts.ServerAlias)
	if err != nil {
		return nil, nil, err
	}
	return project, server, nil
}

func openStorage(kind, serverURL string) (session.Storage, error) {
	switch kind {
	case "file":
		dir, err := auth.DefaultSessionDir()
		if err != nil {
			return nil, err
		}
		return auth.NewFileStorage(afero.NewOsFs(), dir, serverURL), nil
	case "keyring", "":
		return auth.NewKeyringStorage(serverURL), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}

// RequireSession waits for startup validation and returns the signed-in
// user, or ErrNotAuthenticated.
func (a *App) RequireSession(ctx context.Context) (*session.UserProfile, error) {
	if err := a.Store.Wait(ctx); err != nil {
		return nil, err
	}
	user := a.Store.User()
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// Location resolves the search centre: the locator's position when it has
// one, otherwise the project's default location.
func (a *App) Location(ctx context.Context, locator places.Locator) (places.Location, bool) {
	return places.Resolve(ctx, locator, a.Project.Location(), a.Log)
}

// Close stops listening for session expiry
func (a *App) Close() {
	if a.listener != nil {
		a.listener.Close()
	}
}

func (a *App) notify(message string) {
	fmt.Fprintf(a.stderr, "⚠ %s\n", message)
}

// navigate has no page to load in a terminal; it points the user back to
// the start instead.
func (a *App) navigate(path string) {
	fmt.Fprintf(a.stderr, "Returning to %s. Run 'foodcritic login' to sign in again.\n", path)
}
