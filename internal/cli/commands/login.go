package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/foodcritic-dev/foodcritic/internal/cli/app"
	"github.com/foodcritic-dev/foodcritic/internal/cli/client"
	"github.com/foodcritic-dev/foodcritic/internal/cli/session"
)

var errMissingToken = errors.New("server accepted the credentials but returned no token")

// NewLoginCmd creates the login command
func NewLoginCmd(env *Env) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to a foodcritic server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runLogin(cmd.Context(), username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set FOODCRITIC_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set FOODCRITIC_PASSWORD, will prompt if not provided)")

	return cmd
}

func (e *Env) runLogin(ctx context.Context, username, password string) error {
	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv("FOODCRITIC_USERNAME")
	}
	if password == "" {
		password = os.Getenv("FOODCRITIC_PASSWORD")
	}

	if username == "" {
		return fmt.Errorf("username is required (use --username flag or FOODCRITIC_USERNAME env var)")
	}

	password, err := e.promptPassword(password)
	if err != nil {
		return err
	}

	return e.withApp(ctx, false, func(a *app.App) error {
		fmt.Fprintf(e.out(), "Logging in to %s (%s)...\n", a.Server.Alias, a.Server.URL)

		resp, err := a.Client.Login(ctx, client.LoginRequest{Username: username, Password: password})
		if err != nil {
			return err
		}

		if err := e.startSession(ctx, a, resp); err != nil {
			return err
		}
		fmt.Fprintln(e.out(), "✓ Login successful!")
		printUser(e, a.Store.User())
		return nil
	})
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(env *Env) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runRegister(cmd.Context(), username, email, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (e *Env) runRegister(ctx context.Context, username, email, password string) error {
	password, err := e.promptPassword(password)
	if err != nil {
		return err
	}

	return e.withApp(ctx, false, func(a *app.App) error {
		resp, err := a.Client.Register(ctx, client.RegisterRequest{Username: username, Email: email, Password: password})
		if err != nil {
			return err
		}

		if err := e.startSession(ctx, a, resp); err != nil {
			return err
		}
		fmt.Fprintln(e.out(), "✓ Account created!")
		printUser(e, a.Store.User())
		return nil
	})
}

// startSession stores the new session and refreshes the profile, which
// carries fields the auth response leaves out.
func (e *Env) startSession(ctx context.Context, a *app.App, resp *client.AuthResponse) error {
	if resp.Token == "" {
		return errMissingToken
	}
	a.Store.Login(resp.Token, resp.Profile())

	profile, err := a.Client.Profile(ctx)
	if err != nil {
		a.Log.Debug().Err(err).Msg("Failed to refresh profile after login")
		return nil
	}
	a.Store.UpdateUser(*profile)
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd.Context(), false, func(a *app.App) error {
				if !a.Store.Authenticated() {
					fmt.Fprintln(env.out(), "Not logged in.")
					return nil
				}
				a.Store.Logout()
				fmt.Fprintln(env.out(), "✓ Logged out.")
				return nil
			})
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return env.withSession(ctx, func(a *app.App) error {
				fmt.Fprintf(env.out(), "Server: %s (%s)\n", a.Server.Alias, a.Server.URL)
				printUser(env, a.Store.User())

				info, err := session.InspectToken(a.Store.Token())
				if err != nil {
					a.Log.Debug().Err(err).Msg("Token is not a readable JWT")
					return nil
				}
				if !info.ExpiresAt.IsZero() {
					fmt.Fprintf(env.out(), "  Token expires: %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
				}
				return nil
			})
		},
	}
}

func printUser(e *Env, user *session.UserProfile) {
	if user == nil {
		return
	}
	fmt.Fprintf(e.out(), "  User: %s (%s)\n", user.Username, user.Email)
	if user.Role == session.RoleAdmin {
		fmt.Fprintln(e.out(), "  Role: Admin")
	}
}

func (e *Env) promptPassword(password string) (string, error) {
	if password != "" {
		return password, nil
	}

	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or FOODCRITIC_PASSWORD env var)")
	}

	fmt.Fprint(e.errOut(), "Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(e.errOut())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}
