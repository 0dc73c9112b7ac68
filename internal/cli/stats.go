package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/describo/internal/storage"
)

// NewStatsCmd creates the 'stats' command for search analytics.
func NewStatsCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool
	var days int
	var recent int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show search analytics",
		Long: `Summarise the anonymised search history: which products searches led to and
the most recent searches. Queries are stored only as hashes.`,
		Example: `  describo stats
  describo stats --days 1 --recent 20
  describo stats --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			path := cfg.Analytics.DBPath
			if path == "" {
				if path, err = storage.DefaultPath(); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "No analytics recorded yet.")
				return nil
			}

			store := storage.NewStorage(path)
			if err := store.Init(); err != nil {
				return fmt.Errorf("failed to open analytics: %w", err)
			}
			defer store.Close()

			since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
			hits, err := store.ProductHitCounts(since)
			if err != nil {
				return err
			}
			searches, err := store.RecentSearches(recent)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"days":           days,
					"topProducts":    hits,
					"recentSearches": searches,
				})
			}
			printStats(out, days, hits, searches)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().IntVarP(&days, "days", "d", 7, "Window for top products, in days")
	cmd.Flags().IntVarP(&recent, "recent", "r", 10, "Number of recent searches to show")

	return cmd
}

func printStats(out io.Writer, days int, hits []storage.ProductHits, searches []storage.SearchRecord) {
	fmt.Fprintf(out, "Top products (last %d days):\n", days)
	if len(hits) == 0 {
		fmt.Fprintln(out, "  none")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, h := range hits {
			fmt.Fprintf(w, "  %s\t%d\n", h.ProductID, h.Hits)
		}
		w.Flush()
	}

	fmt.Fprintf(out, "\nRecent searches (%d):\n", len(searches))
	if len(searches) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TIME\tINPUT\tKEYWORDS\tRESULTS\tTOP\tLATENCY")
	for _, s := range searches {
		top := s.TopProductID
		if top == "" {
			top = "-"
		}
		fmt.Fprintf(w, "  %s\t%s\t%d\t%d\t%s\t%s\n",
			s.Timestamp.Local().Format(time.DateTime), s.InputType, s.TokenCount,
			s.ResultsCount, top, s.Latency)
	}
	w.Flush()
}
