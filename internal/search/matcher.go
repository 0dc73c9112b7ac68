package search

import (
	"sort"
	"strings"

	"github.com/khanglvm/describo/internal/catalog"
)

// Points awarded per token. A single token can earn several of these for
// the same product.
const (
	ExactKeywordPoints   = 2 // token is in the keyword set
	PartialKeywordPoints = 1 // token is inside some keyword, and not an exact hit
	NamePoints           = 3 // token is inside the product name
	DescriptionPoints    = 1 // token is inside the description
)

// Match scores every product against tokens and returns the ones with a
// positive score, highest first. Equal scores keep catalog order.
func Match(tokens []string, products []catalog.Product) []Result {
	results := make([]Result, 0, len(products))
	if len(tokens) == 0 {
		return results
	}

	for _, p := range products {
		if score := ScoreProduct(tokens, p); score > 0 {
			results = append(results, Result{Product: p, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// ScoreProduct sums the relevance points of every token for one product.
func ScoreProduct(tokens []string, p catalog.Product) int {
	name := strings.ToLower(p.Name)
	desc := strings.ToLower(p.Description)

	score := 0
	for _, tok := range tokens {
		if tok == "" {
			continue
		}

		switch {
		case p.HasKeyword(tok):
			score += ExactKeywordPoints
		case containedInKeyword(tok, p.Keywords):
			score += PartialKeywordPoints
		}
		if strings.Contains(name, tok) {
			score += NamePoints
		}
		if strings.Contains(desc, tok) {
			score += DescriptionPoints
		}
	}
	return score
}

func containedInKeyword(tok string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(kw, tok) {
			return true
		}
	}
	return false
}
