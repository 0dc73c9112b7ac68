package storage

import "time"

// SearchRecord represents a search query for analytics.
type SearchRecord struct {
	// SearchID is a unique identifier for this search (UUID).
	SearchID string `json:"search_id"`

	// QueryHash is the SHA256 hash of the search query for privacy.
	QueryHash string `json:"query_hash"`

	// InputType is "text" or "voice".
	InputType string `json:"input_type"`

	// TokenCount is the number of keywords extracted, synonyms included.
	TokenCount int `json:"token_count"`

	// ResultsCount is the number of matching products.
	ResultsCount int `json:"results_count"`

	// TopProductID is the best match, empty when nothing matched.
	TopProductID string `json:"top_product_id,omitempty"`

	// Latency is how long extraction and matching took.
	Latency time.Duration `json:"latency"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`
}

// ProductHits is how many searches ranked a product first.
type ProductHits struct {
	ProductID string `json:"product_id"`
	Hits      int    `json:"hits"`
}
