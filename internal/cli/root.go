/*
Package cli implements the describo command tree.

Every command resolves configuration the same way: defaults, then the config
file, then .env, then DESCRIBO_* environment variables. --config and
--log-level override the file location and log level.
*/
package cli

import (
	"github.com/spf13/cobra"

	"github.com/khanglvm/describo/internal/version"
)

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd creates the describo root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "describo",
		Short: "Describe it, find it - natural-language product search with invisible bot checks",
		Long: `describo lets shoppers find products by describing them in their own words,
typed or spoken, instead of knowing the product name.

While they browse, describo builds a behavioral trust score from what they do:
time on the page, the variety of actions, searching and voice input. Sessions
that reach the human threshold check out without a CAPTCHA.

Surfaces:
  • serve  - HTTP JSON API with Prometheus metrics
  • mcp    - MCP server (stdio) for AI agents
  • search - one-shot search from the terminal`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default ~/.describo.json)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewMCPCmd(opts))
	cmd.AddCommand(NewSearchCmd(opts))
	cmd.AddCommand(NewCatalogCmd(opts))
	cmd.AddCommand(NewBenchmarkCmd(opts))
	cmd.AddCommand(NewStatsCmd(opts))
	cmd.AddCommand(NewInitCmd(opts))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
