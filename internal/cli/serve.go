package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/khanglvm/describo/internal/api"
	"github.com/khanglvm/describo/internal/config"
	"github.com/khanglvm/describo/internal/storage"
)

// cleanupInterval is how often expired analytics rows are purged.
const cleanupInterval = time.Hour

// NewServeCmd creates the 'serve' command for running the HTTP API.
func NewServeCmd(opts *rootOptions) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the describo HTTP API.

Endpoints:
  • POST /v1/sessions                      - start a trust session
  • POST /v1/sessions/:id/search           - natural-language search
  • POST /v1/sessions/:id/interactions     - log a browsing interaction
  • POST /v1/sessions/:id/transcribe       - speech to text (needs GROQ_API_KEY)
  • GET  /v1/sessions/:id/trust            - score, breakdown and timeline
  • POST /v1/sessions/:id/checkout         - challenge or pass
  • GET  /metrics                          - Prometheus metrics

The server shuts down gracefully on SIGINT/SIGTERM.`,
		Example: `  # Run with defaults (127.0.0.1:8080)
  describo serve

  # Listen on all interfaces
  describo serve --host 0.0.0.0 --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			closer := setupLogging(cfg)
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen address (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")

	return cmd
}

// runServe runs the HTTP API and background maintenance until ctx is done.
func runServe(ctx context.Context, cfg *config.Config) error {
	rt, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := api.NewServer(rt.svc, api.Options{
		Addr:            cfg.Addr(),
		Metrics:         cfg.Server.Metrics,
		ShutdownTimeout: cfg.ShutdownTimeout(),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	if rt.store != nil {
		g.Go(func() error {
			runCleanup(ctx, rt.store, cfg.Retention())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// runCleanup purges analytics older than retention, once at start and then
// hourly, until ctx is done.
func runCleanup(ctx context.Context, store storage.Storage, retention time.Duration) {
	if retention <= 0 {
		return
	}
	purge := func() {
		if err := store.Cleanup(retention); err != nil {
			log.WithError(err).Warn("analytics cleanup failed")
		}
	}

	purge()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
