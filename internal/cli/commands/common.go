package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/foodcritic-dev/foodcritic/internal/cli/app"
)

// Opener builds the App a command talks to. validate asks for the restored
// session to be checked against the backend before use.
type Opener func(ctx context.Context, validate bool) (*app.App, error)

// Env is what every command needs from the root command
type Env struct {
	Open Opener
	Out  io.Writer
	Err  io.Writer
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) errOut() io.Writer {
	if e.Err == nil {
		return os.Stderr
	}
	return e.Err
}

// withApp opens the App, runs fn and closes the App again
func (e *Env) withApp(ctx context.Context, validate bool, fn func(a *app.App) error) error {
	a, err := e.Open(ctx, validate)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// withSession is withApp for commands that need a signed-in user
func (e *Env) withSession(ctx context.Context, fn func(a *app.App) error) error {
	return e.withApp(ctx, true, func(a *app.App) error {
		if _, err := a.RequireSession(ctx); err != nil {
			return err
		}
		return fn(a)
	})
}

func parseReviewID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid review ID %q", raw)
	}
	return id, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
