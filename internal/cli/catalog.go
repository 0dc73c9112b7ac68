package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanglvm/describo/internal/catalog"
)

// NewCatalogCmd creates the 'catalog' command group.
func NewCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate product catalogs",
	}
	cmd.AddCommand(newCatalogListCmd(opts))
	cmd.AddCommand(newCatalogValidateCmd(opts))
	return cmd
}

func newCatalogListCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog products",
		Long:    `Display every product in the configured catalog (the built-in one by default).`,
		Example: `  describo catalog list
  describo catalog ls --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c, err := loadCatalogQuiet(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"products": c.Products()})
			}

			fmt.Fprintf(out, "Catalog Products (%d):\n\n", c.Len())
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tRATING\tAVAILABILITY\tKEYWORDS")
			for _, p := range c.Products() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%s\n",
					p.ID, p.Name, p.Price, p.Rating, p.Availability, strings.Join(p.Keywords, ", "))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func newCatalogValidateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a catalog file",
		Long: `Check a YAML or JSON catalog for missing fields, bad values and duplicate IDs.

Without a path, the configured catalog is validated.`,
		Example: `  describo catalog validate ./products.yaml`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := opts.loadConfig()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				path = cfg.Catalog.Path
			}

			out := cmd.OutOrStdout()
			c, err := loadCatalogQuiet(path)
			if err != nil {
				var loadErr *catalog.LoadError
				if errors.As(err, &loadErr) {
					fmt.Fprintf(out, "✗ %s\n", loadErr.Path)
					for _, p := range loadErr.Problems {
						fmt.Fprintf(out, "    %s\n", p.Error())
					}
					return fmt.Errorf("catalog has %d problem(s)", len(loadErr.Problems))
				}
				return err
			}

			name := path
			if name == "" {
				name = "built-in catalog"
			}
			fmt.Fprintf(out, "✓ %s: %d products\n", name, c.Len())
			return nil
		},
	}
	return cmd
}

// loadCatalogQuiet loads a catalog without logging; commands print their
// own output.
func loadCatalogQuiet(path string) (*catalog.Catalog, error) {
	c, err := catalog.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return c, nil
}
