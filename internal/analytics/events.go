/*
Package analytics records anonymised search events in the background.

Events are queued on a buffered channel and written to storage in batches
so a slow disk never delays a search. When the queue is full new events
are dropped.
*/
package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/khanglvm/describo/internal/search"
	"github.com/khanglvm/describo/internal/storage"
)

// Input types.
const (
	InputText  = "text"
	InputVoice = "voice"
)

// SearchEvent is one completed search, stripped of the query text.
type SearchEvent struct {
	QueryHash    string
	InputType    string
	TokenCount   int
	ResultCount  int
	TopProductID string
	Latency      time.Duration
	Timestamp    time.Time
}

// NewSearchEvent summarises a search response.
func NewSearchEvent(inputType string, resp search.Response, latency time.Duration) SearchEvent {
	e := SearchEvent{
		QueryHash:   storage.HashQuery(resp.Query),
		InputType:   inputType,
		TokenCount:  len(resp.Keywords),
		ResultCount: resp.Total,
		Latency:     latency,
		Timestamp:   time.Now(),
	}
	if len(resp.Results) > 0 {
		e.TopProductID = resp.Results[0].ID
	}
	return e
}

// ToStorage converts the event to a storage record under a fresh ID.
func (e SearchEvent) ToStorage() storage.SearchRecord {
	return storage.SearchRecord{
		SearchID:     uuid.NewString(),
		QueryHash:    e.QueryHash,
		InputType:    e.InputType,
		TokenCount:   e.TokenCount,
		ResultsCount: e.ResultCount,
		TopProductID: e.TopProductID,
		Latency:      e.Latency,
		Timestamp:    e.Timestamp,
	}
}
