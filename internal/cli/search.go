package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanglvm/describo/internal/search"
)

// NewSearchCmd creates the 'search' command for one-shot searches.
func NewSearchCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool
	var showKeywords bool
	var limit int

	cmd := &cobra.Command{
		Use:   "search <description...>",
		Short: "Search the catalog from the terminal",
		Long: `Describe a product in your own words and see what matches.

No session is created and nothing is recorded.`,
		Example: `  describo search foldable thing people sleep on during camping
  describo search "bottle which filters river water" --json
  describo search light for my head --keywords`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c, err := loadCatalogQuiet(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Search.Limit
			}

			resp := search.NewEngine(c, nil).Search(strings.Join(args, " "), limit)
			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			printSearch(out, resp, showKeywords)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().BoolVarP(&showKeywords, "keywords", "k", false, "Show extracted keywords")
	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "Maximum results (0 = all)")

	return cmd
}

func printSearch(out io.Writer, resp search.Response, showKeywords bool) {
	if showKeywords {
		fmt.Fprintf(out, "Keywords: %s\n\n", strings.Join(resp.Keywords, ", "))
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "No matching products.")
		fmt.Fprintln(out, "Try describing what it does or where you would use it.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tID\tNAME\tPRICE\tRATING\tAVAILABILITY")
	for i, r := range resp.Results {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%.1f\t%s\n",
			i+1, r.Score, r.ID, r.Name, r.Price, r.Rating, r.Availability)
	}
	w.Flush()

	if resp.Total > len(resp.Results) {
		fmt.Fprintf(out, "\nShowing %d of %d matches.\n", len(resp.Results), resp.Total)
	}
}
