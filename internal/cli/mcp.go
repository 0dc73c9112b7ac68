package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/khanglvm/describo/internal/mcp"
	"github.com/khanglvm/describo/internal/version"
)

// NewMCPCmd creates the 'mcp' command for running the MCP server.
func NewMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start describo as an MCP server using stdio transport.

This server exposes these tools to AI clients:
  • start_session      - Open a trust session
  • search_products    - Natural-language product search
  • record_interaction - Log a browsing interaction
  • trust_status       - Score, breakdown and recent activity
  • checkout           - Challenge or pass
  • list_examples      - Suggested example queries
  • end_session        - Discard a session

Logs go to stderr so stdout stays a clean protocol stream.`,
		Example: `  # Run directly
  describo mcp

  # Add to an MCP client
  claude mcp add describo -- describo mcp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			closer := setupLogging(cfg)
			defer closer.Close()

			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := mcp.NewServer(rt.svc, version.Version)
			if err := srv.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			log.Info("shutdown complete")
			return nil
		},
	}

	return cmd
}
