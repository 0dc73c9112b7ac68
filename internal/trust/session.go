/*
Package trust scores how human a browsing session looks.

Every user action is appended to the session's interaction log and the
score is recomputed from the whole log, never updated incrementally. The
score feeds a single threshold that decides whether a verification
challenge can be skipped. This is a best-effort heuristic: anyone who knows
the formula can game it.
*/
package trust

import (
	"sync"
	"time"
)

// Metadata is free-form detail attached to an interaction. The scorer never
// reads it.
type Metadata map[string]any

// Interaction is one user-triggered event.
type Interaction struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}

// TimelineEntry is an interaction positioned relative to session start.
type TimelineEntry struct {
	Action         string  `json:"action"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// Session is one visitor's interaction log and current score. A session is
// written by one request at a time; the mutex only guards against readers
// racing the writer.
type Session struct {
	ID    string
	Start time.Time

	mu           sync.Mutex
	clock        Clock
	scorer       *Scorer
	gate         Gate
	interactions []Interaction
	breakdown    Breakdown
	lastActive   time.Time
}

// NewSession starts a session now. A nil clock uses the wall clock.
func NewSession(id string, clock Clock, params Params) *Session {
	if clock == nil {
		clock = SystemClock{}
	}
	now := clock.Now()
	return &Session{
		ID:         id,
		Start:      now,
		clock:      clock,
		scorer:     NewScorer(params),
		gate:       NewGate(params.HumanThreshold),
		lastActive: now,
	}
}

// Append records an action and recomputes the score from the full log.
// Any action string is accepted; only "search" and "voice*" earn bonuses.
func (s *Session) Append(action string, metadata Metadata) Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	in := Interaction{
		Timestamp: now,
		Action:    action,
		Metadata:  copyMetadata(metadata),
	}
	s.interactions = append(s.interactions, in)
	s.lastActive = now
	s.breakdown = s.scorer.Breakdown(s.Start, now, s.interactions)
	return in
}

// Recent returns the last n interactions, oldest first.
func (s *Session) Recent(n int) []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return []Interaction{}
	}
	if n > len(s.interactions) {
		n = len(s.interactions)
	}
	out := make([]Interaction, n)
	copy(out, s.interactions[len(s.interactions)-n:])
	return out
}

// All returns a copy of the full log.
func (s *Session) All() []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Interaction, len(s.interactions))
	copy(out, s.interactions)
	return out
}

// Len returns the number of logged interactions.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.interactions)
}

// Score is the score as of the most recent append.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.breakdown.Score
}

// Breakdown is the score components as of the most recent append.
func (s *Session) Breakdown() Breakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.breakdown
}

// Decision applies the human threshold to the current score.
func (s *Session) Decision() Decision {
	return s.gate.Decide(s.Score())
}

// IsHuman reports whether the current score clears the threshold.
func (s *Session) IsHuman() bool {
	return s.Decision().Human
}

// Timeline returns the last n interactions with their offset from session
// start.
func (s *Session) Timeline(n int) []TimelineEntry {
	recent := s.Recent(n)
	out := make([]TimelineEntry, len(recent))
	for i, in := range recent {
		out[i] = TimelineEntry{
			Action:         in.Action,
			ElapsedSeconds: in.Timestamp.Sub(s.Start).Seconds(),
		}
	}
	return out
}

// LastActive is the time of the latest append, or the start time.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func copyMetadata(m Metadata) Metadata {
	if len(m) == 0 {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
