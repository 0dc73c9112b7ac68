package analytics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/describo/internal/catalog"
	"github.com/khanglvm/describo/internal/search"
	"github.com/khanglvm/describo/internal/storage"
)

// mockStorage is an in-memory storage.Storage.
type mockStorage struct {
	mu      sync.Mutex
	records []storage.SearchRecord
	initErr error
}

func (m *mockStorage) Init() error { return m.initErr }

func (m *mockStorage) RecordSearch(rec storage.SearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *mockStorage) RecentSearches(limit int) ([]storage.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.SearchRecord(nil), m.records...), nil
}

func (m *mockStorage) ProductHitCounts(time.Time) ([]storage.ProductHits, error) {
	return nil, nil
}

func (m *mockStorage) Cleanup(time.Duration) error { return nil }
func (m *mockStorage) Close() error                { return nil }

func (m *mockStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func TestNewSearchEvent(t *testing.T) {
	engine := search.NewEngine(catalog.Default(), nil)
	resp := engine.Search("light that goes on your head for camping", 0)

	e := NewSearchEvent(InputVoice, resp, 2*time.Millisecond)
	assert.Equal(t, storage.HashQuery(resp.Query), e.QueryHash)
	assert.Equal(t, InputVoice, e.InputType)
	assert.Equal(t, len(resp.Keywords), e.TokenCount)
	assert.Equal(t, resp.Total, e.ResultCount)
	assert.Equal(t, "headlamp", e.TopProductID)

	empty := NewSearchEvent(InputText, engine.Search("zzz", 0), 0)
	assert.Equal(t, "", empty.TopProductID)
	assert.Equal(t, 0, empty.ResultCount)

	rec := e.ToStorage()
	assert.Len(t, rec.SearchID, 36)
	assert.NotEqual(t, rec.SearchID, e.ToStorage().SearchID)
	assert.Equal(t, "headlamp", rec.TopProductID)
	assert.Equal(t, 2*time.Millisecond, rec.Latency)
}

func TestRecorder_FlushesOnInterval(t *testing.T) {
	store := &mockStorage{}
	r := NewRecorder(store, Options{FlushInterval: 10 * time.Millisecond})
	defer r.Stop()

	r.Record(SearchEvent{InputType: InputText, Timestamp: time.Now()})

	assert.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRecorder_FlushesFullBatch(t *testing.T) {
	store := &mockStorage{}
	r := NewRecorder(store, Options{BatchSize: 3, FlushInterval: time.Hour})
	defer r.Stop()

	for i := 0; i < 3; i++ {
		r.Record(SearchEvent{InputType: InputText})
	}

	assert.Eventually(t, func() bool { return store.count() == 3 }, time.Second, 5*time.Millisecond)
}

func TestRecorder_StopDrainsQueue(t *testing.T) {
	store := &mockStorage{}
	r := NewRecorder(store, Options{BatchSize: 1000, FlushInterval: time.Hour})

	for i := 0; i < 25; i++ {
		r.Record(SearchEvent{InputType: InputText})
	}
	r.Stop()
	r.Stop()

	assert.Equal(t, 25, store.count())
	assert.False(t, r.IsEnabled())

	r.Record(SearchEvent{InputType: InputText})
	assert.Equal(t, 0, r.QueueLen())
}

func TestRecorder_DisabledWhenStorageFails(t *testing.T) {
	store := &mockStorage{initErr: errors.New("disk on fire")}
	r := NewRecorder(store, Options{})
	defer r.Stop()

	assert.False(t, r.IsEnabled())
	r.Record(SearchEvent{InputType: InputText})
	assert.Equal(t, 0, r.QueueLen())
}

func TestRecorder_NilStorage(t *testing.T) {
	r := NewRecorder(nil, Options{})
	defer r.Stop()

	assert.False(t, r.IsEnabled())
	r.Record(SearchEvent{})
}

func TestRecorder_DropsWhenQueueFull(t *testing.T) {
	store := &mockStorage{}
	r := NewRecorder(store, Options{QueueSize: 1, BatchSize: 1000, FlushInterval: time.Hour})
	defer r.Stop()

	for i := 0; i < 100; i++ {
		r.Record(SearchEvent{InputType: InputText})
	}
	r.Stop()

	require.LessOrEqual(t, store.count(), 100)
	assert.Greater(t, store.count(), 0)
}

func TestRecorder_WritesToSQLite(t *testing.T) {
	store := storage.NewStorage(t.TempDir() + "/analytics.db")
	r := NewRecorder(store, Options{})
	defer store.Close()

	engine := search.NewEngine(catalog.Default(), nil)
	r.Record(NewSearchEvent(InputText, engine.Search("portable chair for outdoor use", 0), time.Millisecond))
	r.Stop()

	got, err := store.RecentSearches(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "camping_chair", got[0].TopProductID)
}
