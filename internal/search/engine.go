package search

import "github.com/khanglvm/describo/internal/catalog"

// DefaultLimit is how many results the storefront displays.
const DefaultLimit = 5

// Engine binds an extractor to a catalog.
type Engine struct {
	extractor *Extractor
	catalog   *catalog.Catalog
}

// NewEngine creates a search engine. A nil extractor uses the default one.
func NewEngine(c *catalog.Catalog, extractor *Extractor) *Engine {
	if extractor == nil {
		extractor = defaultExtractor
	}
	return &Engine{extractor: extractor, catalog: c}
}

// Catalog returns the catalog the engine searches.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Search extracts keywords from text and ranks the catalog against them.
// limit <= 0 returns every match.
func (e *Engine) Search(text string, limit int) Response {
	keywords := e.extractor.Extract(text)
	results := Match(keywords, e.catalog.Products())

	resp := Response{
		Query:    text,
		Keywords: keywords,
		Total:    len(results),
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	resp.Results = results
	return resp
}
