// Package session keeps the live trust sessions of the process.
//
// Sessions are held in memory only. An idle session is evicted by a
// background sweeper and its interaction log is discarded with it.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/khanglvm/describo/internal/metrics"
	"github.com/khanglvm/describo/internal/trust"
)

const (
	// DefaultIdleTimeout is how long a session may go without an
	// interaction before it is evicted.
	DefaultIdleTimeout = 30 * time.Minute

	// DefaultSweepInterval is how often the sweeper looks for idle sessions.
	DefaultSweepInterval = time.Minute
)

// Options configures a Registry. Zero fields take defaults.
type Options struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	Clock         trust.Clock
	Params        *trust.Params
}

// Registry maps session IDs to sessions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*trust.Session

	idle     time.Duration
	interval time.Duration
	clock    trust.Clock
	params   trust.Params

	startOnce sync.Once
	stopOnce  sync.Once
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewRegistry creates an empty registry. Call Start to run the sweeper.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		sessions: make(map[string]*trust.Session),
		idle:     opts.IdleTimeout,
		interval: opts.SweepInterval,
		clock:    opts.Clock,
		params:   trust.DefaultParams(),
		stopChan: make(chan struct{}),
	}
	if r.idle <= 0 {
		r.idle = DefaultIdleTimeout
	}
	if r.interval <= 0 {
		r.interval = DefaultSweepInterval
	}
	if r.clock == nil {
		r.clock = trust.SystemClock{}
	}
	if opts.Params != nil {
		r.params = *opts.Params
	}
	return r
}

// Create starts a new session under a fresh random ID.
func (r *Registry) Create() *trust.Session {
	s := trust.NewSession(uuid.NewString(), r.clock, r.params)

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SetSessionsActive(n)
	log.WithField("session", s.ID).Debug("session started")
	return s
}

// Get looks up a live session.
func (r *Registry) Get(id string) (*trust.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// End removes a session. It reports whether the session existed.
func (r *Registry) End(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if ok {
		metrics.SetSessionsActive(n)
		log.WithField("session", id).Debug("session ended")
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts every session idle for longer than the idle timeout and
// returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.clock.Now().Add(-r.idle)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		metrics.SetSessionsActive(n)
		metrics.AddSessionsExpired(removed)
		log.WithFields(log.Fields{"expired": removed, "active": n}).Info("evicted idle sessions")
	}
	return removed
}

// Start launches the background sweeper. Further calls are no-ops.
func (r *Registry) Start() {
	r.startOnce.Do(func() {
		r.wg.Add(1)
		go r.sweepLoop()
	})
}

// Stop halts the sweeper and waits for it to exit.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
	})
}

func (r *Registry) sweepLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stopChan:
			return
		}
	}
}
