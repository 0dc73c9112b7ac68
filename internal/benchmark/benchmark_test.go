package benchmark

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/describo/internal/catalog"
	"github.com/khanglvm/describo/internal/search"
)

func TestDefaultCases(t *testing.T) {
	cases := DefaultCases()
	require.Len(t, cases, len(search.ExampleQueries))
	for i, c := range cases {
		assert.Equal(t, search.ExampleQueries[i], c.Query)
		_, ok := catalog.Default().Get(c.ExpectedID)
		assert.True(t, ok, "expected product %q not in default catalog", c.ExpectedID)
	}
}

func TestRunBenchmark_DefaultCatalog(t *testing.T) {
	engine := search.NewEngine(catalog.Default(), nil)
	result := RunBenchmark(engine, DefaultCases(), 0)

	assert.Equal(t, search.DefaultLimit, result.K)
	assert.Equal(t, 1.0, result.HitAt1)
	assert.Equal(t, 1.0, result.HitAtK)
	assert.Equal(t, 1.0, result.MRR)
	for _, c := range result.Cases {
		assert.Equal(t, 1, c.Rank, c.Query)
		assert.Equal(t, c.ExpectedID, c.TopID)
		assert.NotEmpty(t, c.Keywords)
	}
}

func TestRunBenchmark_Misses(t *testing.T) {
	engine := search.NewEngine(catalog.Default(), nil)
	cases := []Case{
		{Query: "waterproof shelter for camping", ExpectedID: "tent"},
		{Query: "foldable thing people sleep on during camping", ExpectedID: "camping_chair"},
		{Query: "quantum flux capacitor", ExpectedID: "tent"},
	}
	result := RunBenchmark(engine, cases, 1)

	assert.Equal(t, 1, result.Cases[0].Rank)
	assert.Equal(t, 2, result.Cases[1].Rank)
	assert.Equal(t, 0, result.Cases[2].Rank)
	assert.Equal(t, "", result.Cases[2].TopID)

	assert.InDelta(t, 1.0/3, result.HitAt1, 1e-9)
	assert.InDelta(t, 1.0/3, result.HitAtK, 1e-9)
	assert.InDelta(t, (1+0.5)/3, result.MRR, 1e-9)
}

func TestRunBenchmark_NoCases(t *testing.T) {
	engine := search.NewEngine(catalog.Default(), nil)
	result := RunBenchmark(engine, nil, 3)
	assert.Empty(t, result.Cases)
	assert.Zero(t, result.HitAt1)
	assert.Zero(t, result.MRR)
}

func TestFormatResult(t *testing.T) {
	engine := search.NewEngine(catalog.Default(), nil)
	out := FormatResult(RunBenchmark(engine, DefaultCases(), 5))

	assert.Contains(t, out, "SEARCH RELEVANCE BENCHMARK RESULTS")
	assert.Contains(t, out, "Hit@1:       100.0%")
	assert.Contains(t, out, "expected camping_cot")
	assert.True(t, strings.HasSuffix(out, "╝\n"))
}

func TestBenchmarkResultJSON(t *testing.T) {
	engine := search.NewEngine(catalog.Default(), nil)
	data, err := json.Marshal(RunBenchmark(engine, DefaultCases()[:1], 5))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"cases", "k", "hitAt1", "hitAtK", "mrr", "avgLatencyNs"} {
		assert.Contains(t, decoded, key)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
