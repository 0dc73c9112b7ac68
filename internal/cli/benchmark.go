package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/khanglvm/describo/internal/benchmark"
	"github.com/khanglvm/describo/internal/search"
)

// NewBenchmarkCmd creates the 'bench' command for search relevance testing.
func NewBenchmarkCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool
	var casesPath string
	var k int

	cmd := &cobra.Command{
		Use:     "bench",
		Aliases: []string{"benchmark"},
		Short:   "Measure search relevance against known queries",
		Long: `Run every benchmark query through the search engine and report how often
the intended product ranks first (hit@1), appears in the top K (hit@K), and
the mean reciprocal rank.

By default the built-in example queries are used against the configured
catalog. --cases loads a YAML file instead:

  - query: bottle which filters river water
    expectedId: water_purifier`,
		Example: `  # Run benchmark with the built-in examples
  describo bench

  # Custom cases, output as JSON
  describo bench --cases ./queries.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c, err := loadCatalogQuiet(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			cases := benchmark.DefaultCases()
			if casesPath != "" {
				if cases, err = loadCases(casesPath); err != nil {
					return err
				}
			}

			result := benchmark.RunBenchmark(search.NewEngine(c, nil), cases, k)
			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprint(out, benchmark.FormatResult(result))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVar(&casesPath, "cases", "", "YAML file of {query, expectedId} cases")
	cmd.Flags().IntVarP(&k, "top", "k", search.DefaultLimit, "K for hit@K")

	return cmd
}

type caseSpec struct {
	Query      string `yaml:"query"`
	ExpectedID string `yaml:"expectedId"`
}

func loadCases(path string) ([]benchmark.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases: %w", err)
	}
	var specs []caseSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse cases: %w", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no cases in %s", path)
	}

	cases := make([]benchmark.Case, 0, len(specs))
	for i, s := range specs {
		if s.Query == "" || s.ExpectedID == "" {
			return nil, fmt.Errorf("case #%d: query and expectedId are required", i)
		}
		cases = append(cases, benchmark.Case{Query: s.Query, ExpectedID: s.ExpectedID})
	}
	return cases, nil
}
