package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodcritic-dev/foodcritic/internal/cli/app"
	"github.com/foodcritic-dev/foodcritic/internal/cli/commands"
	"github.com/foodcritic-dev/foodcritic/internal/config"
	"github.com/foodcritic-dev/foodcritic/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the foodcritic command tree around env. A nil
// env.Open opens the App from the environment and foodcritic.yaml.
func NewRootCmd(env *commands.Env) *cobra.Command {
	var (
		serverAlias string
		envCfg      *config.Config
	)

	rootCmd := &cobra.Command{
		Use:   "foodcritic",
		Short: "foodcritic - restaurant reviews from your terminal",
		Long: `foodcritic CLI - Browse restaurants, search nearby places and write reviews.

Sessions are kept per server in the OS keyring (or a file, with
FOODCRITIC_SESSION_STORE=file) and end automatically when the server
rejects your token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			envCfg = cfg

			// stdout carries command output, so logs go to stderr
			logger.InitWithOptions(cfg.Logging.Level, cfg.Logging.Format, logger.Options{
				Out:  os.Stderr,
				File: cfg.Logging.File,
			})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverAlias, "server", "", "Server alias from foodcritic.yaml")

	if env.Open == nil {
		env.Open = func(ctx context.Context, validate bool) (*app.App, error) {
			return app.Open(ctx, app.Options{
				ServerAlias:     serverAlias,
				Env:             envCfg,
				ValidateSession: validate,
				Stderr:          env.Err,
				Log:             logger.GetLogger(),
			})
		}
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "foodcritic version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd(env))
	rootCmd.AddCommand(commands.NewLoginCmd(env))
	rootCmd.AddCommand(commands.NewRegisterCmd(env))
	rootCmd.AddCommand(commands.NewLogoutCmd(env))
	rootCmd.AddCommand(commands.NewWhoamiCmd(env))
	rootCmd.AddCommand(commands.NewRestaurantsCmd(env))
	rootCmd.AddCommand(commands.NewRestaurantCmd(env))
	rootCmd.AddCommand(commands.NewSearchCmd(env))
	rootCmd.AddCommand(commands.NewDetailsCmd(env))
	rootCmd.AddCommand(commands.NewSuggestCmd(env))
	rootCmd.AddCommand(commands.NewReviewsCmd(env))
	rootCmd.AddCommand(commands.NewMyReviewCmd(env))
	rootCmd.AddCommand(commands.NewReviewCmd(env))
	rootCmd.AddCommand(commands.NewRecentCmd(env))
	rootCmd.AddCommand(commands.NewMyReviewsCmd(env))
	rootCmd.AddCommand(commands.NewPhotoCmd(env))
	rootCmd.AddCommand(commands.NewSelectServerCmd(env))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd(&commands.Env{Out: os.Stdout, Err: os.Stderr})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
