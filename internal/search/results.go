/*
Package search implements natural-language product search.

A query goes through two steps: Extract turns free text into tokens
(normalization, stop-word removal, inline synonym expansion) and Match scores
each catalog product with a fixed additive rule set. There is no statistical
ranking; the scores are small integers meant to be explainable.
*/
package search

import "github.com/khanglvm/describo/internal/catalog"

// Result is a product with its relevance score. It marshals flat:
// {id, name, description, price, rating, availability, ..., score}.
type Result struct {
	catalog.Product
	Score int `json:"score"`
}

// Response is the outcome of one free-text search.
type Response struct {
	Query    string   `json:"query"`
	Keywords []string `json:"keywords"`
	Results  []Result `json:"results"`
	// Total is the number of matching products before the display limit.
	Total int `json:"total"`
}
