package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foodcritic-dev/foodcritic/internal/cli/config"
	"github.com/foodcritic-dev/foodcritic/internal/cli/serverselect"
	"github.com/foodcritic-dev/foodcritic/internal/cli/userconfig"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Select the server to use for commands",
		Long: `Select the server to use for commands.

If no param is provided, an interactive prompt will be shown.
Each server keeps its own session, so switching does not sign you out.

Examples:
  $ foodcritic select-server                            # Interactive selection
  $ foodcritic select-server http://localhost:8080/api  # Select by URL
  $ foodcritic select-server prod                       # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return env.runSelectServer(urlOrAlias)
		},
	}

	return cmd
}

func (e *Env) runSelectServer(urlOrAlias string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'foodcritic init' to create a configuration file", err)
	}

	var server *config.Server

	if urlOrAlias != "" {
		server, err = serverselect.GetServerByURLOrAlias(cfg, urlOrAlias)
	} else {
		server, err = serverselect.PromptServerSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	fmt.Fprintf(e.out(), "Selected server: %s (%s)\n", server.Alias, server.URL)
	return nil
}
