package commands

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foodcritic-dev/foodcritic/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd(env *Env) *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "init <api-url>",
		Short: "Add a foodcritic API server to ./foodcritic.yaml",
		Example: `  $ foodcritic init http://localhost:8080/api
  $ foodcritic init https://api.example.com/api --alias prod`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runInit(args[0], alias)
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Server alias (defaults to local, then server-N)")

	return cmd
}

func (e *Env) runInit(apiURL, alias string) error {
	apiURL = strings.TrimRight(apiURL, "/")
	if u, err := url.Parse(apiURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API URL %q (expected e.g. http://localhost:8080/api)", apiURL)
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintf(e.out(), "Found existing %s\n", config.ConfigFileName)
	} else {
		cfg = &config.Config{Servers: []config.Server{}}
		isNewConfig = true
	}

	if _, err := cfg.GetServerByURL(apiURL); err == nil {
		fmt.Fprintf(e.out(), "Server %s already exists in %s\n", apiURL, config.ConfigFileName)
		return nil
	}

	if alias == "" {
		if len(cfg.Servers) == 0 {
			alias = "local"
		} else {
			alias = fmt.Sprintf("server-%d", len(cfg.Servers)+1)
		}
	}
	if _, err := cfg.GetServerByAlias(alias); err == nil {
		return fmt.Errorf("alias '%s' is already used in %s", alias, config.ConfigFileName)
	}

	cfg.Servers = append(cfg.Servers, config.Server{URL: apiURL, Alias: alias})

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Fprintf(e.out(), "✓ Created ./%s with server %s (%s)\n", config.ConfigFileName, apiURL, alias)
	} else {
		fmt.Fprintf(e.out(), "✓ Added server %s (%s) to ./%s\n", apiURL, alias, config.ConfigFileName)
	}

	fmt.Fprintln(e.out(), "\nNext steps:")
	fmt.Fprintln(e.out(), "  Run 'foodcritic register' or 'foodcritic login' to sign in")

	return nil
}
