/*
Package benchmark measures search relevance for describo.

Each case pairs a natural-language query with the product a shopper means.
The benchmark runs every case through the search engine and reports:
  - hit@1: the expected product ranks first
  - hit@K: the expected product is among the displayed results
  - MRR: mean reciprocal rank of the expected product

Latency is wall-clock time per search, averaged over all cases.
*/
package benchmark

import (
	"fmt"
	"strings"
	"time"

	"github.com/khanglvm/describo/internal/search"
)

// Case is one query with the product it should find.
type Case struct {
	Query      string `json:"query"`
	ExpectedID string `json:"expectedId"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Case
	// Rank is the 1-based position of the expected product, 0 if missing.
	Rank     int      `json:"rank"`
	TopID    string   `json:"topId"`
	Keywords []string `json:"keywords"`
	Matches  int      `json:"matches"`
}

// BenchmarkResult summarises a run.
type BenchmarkResult struct {
	Cases      []CaseResult  `json:"cases"`
	K          int           `json:"k"`
	HitAt1     float64       `json:"hitAt1"`
	HitAtK     float64       `json:"hitAtK"`
	MRR        float64       `json:"mrr"`
	AvgLatency time.Duration `json:"avgLatencyNs"`
}

// expectedProducts maps each built-in example query to the product it
// describes in the default catalog.
var expectedProducts = map[string]string{
	"foldable thing people sleep on during camping": "camping_cot",
	"bottle which filters river water":              "water_purifier",
	"light that goes on your head for camping":      "headlamp",
	"portable chair for outdoor use":                "camping_chair",
	"waterproof shelter for camping":                "tent",
}

// DefaultCases returns the built-in example queries with their expected
// products, in example order.
func DefaultCases() []Case {
	cases := make([]Case, 0, len(search.ExampleQueries))
	for _, q := range search.ExampleQueries {
		if id, ok := expectedProducts[q]; ok {
			cases = append(cases, Case{Query: q, ExpectedID: id})
		}
	}
	return cases
}

// RunBenchmark searches every case and scores the rankings. k <= 0 uses
// search.DefaultLimit.
func RunBenchmark(engine *search.Engine, cases []Case, k int) *BenchmarkResult {
	if k <= 0 {
		k = search.DefaultLimit
	}
	result := &BenchmarkResult{K: k, Cases: make([]CaseResult, 0, len(cases))}
	if len(cases) == 0 {
		return result
	}

	var hits1, hitsK int
	var rrSum float64
	var total time.Duration

	for _, c := range cases {
		start := time.Now()
		resp := engine.Search(c.Query, 0)
		total += time.Since(start)

		cr := CaseResult{Case: c, Keywords: resp.Keywords, Matches: resp.Total}
		if len(resp.Results) > 0 {
			cr.TopID = resp.Results[0].ID
		}
		for i, r := range resp.Results {
			if r.ID == c.ExpectedID {
				cr.Rank = i + 1
				break
			}
		}

		if cr.Rank == 1 {
			hits1++
		}
		if cr.Rank > 0 && cr.Rank <= k {
			hitsK++
		}
		if cr.Rank > 0 {
			rrSum += 1 / float64(cr.Rank)
		}
		result.Cases = append(result.Cases, cr)
	}

	n := float64(len(cases))
	result.HitAt1 = float64(hits1) / n
	result.HitAtK = float64(hitsK) / n
	result.MRR = rrSum / n
	result.AvgLatency = total / time.Duration(len(cases))
	return result
}

// FormatResult formats the benchmark result for display.
func FormatResult(result *BenchmarkResult) string {
	var sb strings.Builder

	sb.WriteString("╔══════════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║              SEARCH RELEVANCE BENCHMARK RESULTS              ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	for _, c := range result.Cases {
		mark := "✓"
		if c.Rank != 1 {
			mark = "✗"
		}
		rank := "-"
		if c.Rank > 0 {
			rank = fmt.Sprintf("#%d", c.Rank)
		}
		sb.WriteString(fmt.Sprintf("║  %s %-46s %-4s %-6s║\n", mark, truncate(c.Query, 46), rank, ""))
		sb.WriteString(fmt.Sprintf("║      expected %-18s top %-22s║\n", c.ExpectedID, orDash(c.TopID)))
	}
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  Cases:       %-47d║\n", len(result.Cases)))
	sb.WriteString(fmt.Sprintf("║  Hit@1:       %-47s║\n", percent(result.HitAt1)))
	sb.WriteString(fmt.Sprintf("║  Hit@%-2d:      %-47s║\n", result.K, percent(result.HitAtK)))
	sb.WriteString(fmt.Sprintf("║  MRR:         %-47.3f║\n", result.MRR))
	sb.WriteString(fmt.Sprintf("║  Avg latency: %-47s║\n", result.AvgLatency))
	sb.WriteString("╚══════════════════════════════════════════════════════════════╝\n")

	return sb.String()
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
