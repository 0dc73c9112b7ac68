package search

import (
	"testing"

	"github.com/khanglvm/describo/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestScoreProduct_Rules(t *testing.T) {
	p := catalog.Product{
		Name:        "Folding Camping Chair",
		Description: "Lightweight portable chair for outdoor use",
		Keywords:    []string{"chair", "folding", "portable"},
	}

	tests := []struct {
		token string
		want  int
	}{
		{"chair", ExactKeywordPoints + NamePoints + DescriptionPoints},
		{"fold", PartialKeywordPoints + NamePoints},
		{"portable", ExactKeywordPoints + DescriptionPoints},
		{"use", DescriptionPoints},
		{"camping", NamePoints},
		{"tent", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreProduct([]string{tt.token}, p), "token %q", tt.token)
	}
}

func TestMatch_CampingCotQuery(t *testing.T) {
	products := catalog.Default().Products()
	results := Match(Extract("foldable thing people sleep on during camping"), products)

	require.NotEmpty(t, results)
	assert.Equal(t, "camping_cot", results[0].ID)
	assert.Equal(t, 19, results[0].Score)
	assert.Equal(t, []string{
		"camping_cot", "camping_chair", "water_purifier", "sleeping_bag", "tent", "headlamp",
	}, ids(results))
	assert.Equal(t, []int{19, 12, 8, 8, 6, 2}, []int{
		results[0].Score, results[1].Score, results[2].Score,
		results[3].Score, results[4].Score, results[5].Score,
	})
}

func TestMatch_TiesKeepCatalogOrder(t *testing.T) {
	products := []catalog.Product{
		{ID: "first", Name: "A", Description: "x", Keywords: []string{"tent"}},
		{ID: "second", Name: "B", Description: "x", Keywords: []string{"tent"}},
		{ID: "third", Name: "C", Description: "x", Keywords: []string{"tent", "dome"}},
		{ID: "fourth", Name: "D", Description: "x", Keywords: []string{"tent"}},
	}
	results := Match([]string{"tent", "dome"}, products)
	assert.Equal(t, []string{"third", "first", "second", "fourth"}, ids(results))
}

func TestMatch_ExcludesZeroScores(t *testing.T) {
	results := Match([]string{"kayak"}, catalog.Default().Products())
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestMatch_NoTokens(t *testing.T) {
	results := Match(nil, catalog.Default().Products())
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestMatch_Deterministic(t *testing.T) {
	products := catalog.Default().Products()
	tokens := Extract("light that goes on your head for camping")

	first := Match(tokens, products)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Match(tokens, products))
	}
}

func TestMatch_DuplicatesAmplify(t *testing.T) {
	products := catalog.Default().Products()
	once := Match([]string{"tent"}, products)
	twice := Match([]string{"tent", "tent"}, products)

	require.Len(t, once, 1)
	require.Len(t, twice, 1)
	assert.Equal(t, once[0].Score*2, twice[0].Score)
}
