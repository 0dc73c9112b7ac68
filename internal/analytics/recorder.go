package analytics

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/khanglvm/describo/internal/metrics"
	"github.com/khanglvm/describo/internal/storage"
)

const (
	// DefaultQueueSize is the buffer size for the event queue.
	DefaultQueueSize = 1000

	// DefaultBatchSize is the number of events that triggers an immediate flush.
	DefaultBatchSize = 10

	// DefaultFlushInterval is how often pending events are flushed.
	DefaultFlushInterval = 500 * time.Millisecond
)

// Options tunes a Recorder. Zero fields take defaults.
type Options struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

// Recorder writes search events to storage in the background.
type Recorder struct {
	storage   storage.Storage
	queue     chan SearchEvent
	batchSize int
	interval  time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	enabled   bool
	mu        sync.RWMutex
}

// NewRecorder initialises storage and starts the background writer. If
// storage fails to initialise, the recorder stays disabled and Record is a
// no-op.
func NewRecorder(s storage.Storage, opts Options) *Recorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}

	r := &Recorder{
		storage:   s,
		queue:     make(chan SearchEvent, opts.QueueSize),
		batchSize: opts.BatchSize,
		interval:  opts.FlushInterval,
		stopChan:  make(chan struct{}),
		enabled:   s != nil,
	}

	if s != nil {
		if err := s.Init(); err != nil {
			log.WithError(err).Warn("search analytics disabled")
			r.enabled = false
		}
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Record queues an event without blocking.
func (r *Recorder) Record(event SearchEvent) {
	if !r.IsEnabled() {
		return
	}

	select {
	case r.queue <- event:
	default:
		metrics.IncAnalyticsDropped()
		log.WithField("input_type", event.InputType).Warn("analytics queue full, dropping search event")
	}
}

// Stop flushes queued events and stops the writer. Safe to call more than
// once.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		r.Disable()
		close(r.stopChan)
		r.wg.Wait()
	})
}

// Disable stops accepting events.
func (r *Recorder) Disable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = false
}

// IsEnabled reports whether events are being accepted.
func (r *Recorder) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// QueueLen returns the number of events waiting to be written.
func (r *Recorder) QueueLen() int {
	return len(r.queue)
}

func (r *Recorder) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	batch := make([]SearchEvent, 0, r.batchSize)

	for {
		select {
		case event := <-r.queue:
			batch = append(batch, event)
			if len(batch) >= r.batchSize {
				r.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}

		case <-r.stopChan:
			for {
				select {
				case event := <-r.queue:
					batch = append(batch, event)
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

func (r *Recorder) flush(events []SearchEvent) {
	if len(events) == 0 || r.storage == nil {
		return
	}

	for _, event := range events {
		if err := r.storage.RecordSearch(event.ToStorage()); err != nil {
			log.WithError(err).Warn("failed to record search event")
		}
	}
	log.WithField("events", len(events)).Debug("flushed search events")
}
