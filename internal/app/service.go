// Package app wires search, trust sessions, transcription and analytics
// into the operations exposed over HTTP, MCP and the CLI.
//
// Every per-session operation names its session explicitly. There is no
// ambient "current session".
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/khanglvm/describo/internal/analytics"
	"github.com/khanglvm/describo/internal/catalog"
	"github.com/khanglvm/describo/internal/metrics"
	"github.com/khanglvm/describo/internal/search"
	"github.com/khanglvm/describo/internal/session"
	"github.com/khanglvm/describo/internal/transcribe"
	"github.com/khanglvm/describo/internal/trust"
)

// Interaction names the service logs on its own behalf.
const (
	ActionSearch          = "search"
	ActionVoiceSearch     = "voice_search"
	ActionVoiceTranscribe = "voice_transcribe"
	ActionExampleClick    = "example_click"
	ActionProductView     = "product_view"
	ActionCheckoutAttempt = "checkout_attempt"
)

// TimelineLength is how many recent interactions a trust view carries.
const TimelineLength = 10

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyAction is returned when an interaction has no name.
	ErrEmptyAction = errors.New("action must not be empty")

	// ErrInvalidInputType is returned for input types other than text and voice.
	ErrInvalidInputType = errors.New(`input type must be "text" or "voice"`)

	// ErrUnknownExample is returned for an out-of-range example index.
	ErrUnknownExample = errors.New("unknown example")

	// ErrUnknownProduct is returned for a product ID not in the catalog.
	ErrUnknownProduct = errors.New("unknown product")
)

// trustHints tell a visitor how to raise a low score.
var trustHints = []string{
	"Try searching for products",
	"Use voice input",
	"Browse for a bit longer",
	"Click on example queries",
}

// Options configures a Service.
type Options struct {
	Catalog     *catalog.Catalog
	Extractor   *search.Extractor
	Sessions    *session.Registry
	Transcriber transcribe.Transcriber
	// Recorder is optional; nil disables search analytics.
	Recorder *analytics.Recorder
	// Limit caps displayed results; 0 shows every match.
	Limit                int
	TranscriptionTimeout time.Duration
}

// Service implements the describo operations.
type Service struct {
	engine      *search.Engine
	sessions    *session.Registry
	transcriber transcribe.Transcriber
	recorder    *analytics.Recorder
	limit       int
	sttTimeout  time.Duration
}

// New creates a service. Nil collaborators get working defaults: the
// built-in catalog, a fresh registry and a disabled transcriber.
func New(opts Options) *Service {
	c := opts.Catalog
	if c == nil {
		c = catalog.Default()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewRegistry(session.Options{})
	}
	stt := opts.Transcriber
	if stt == nil {
		stt = transcribe.Disabled{}
	}
	timeout := opts.TranscriptionTimeout
	if timeout <= 0 {
		timeout = transcribe.DefaultTimeout
	}
	return &Service{
		engine:      search.NewEngine(c, opts.Extractor),
		sessions:    sessions,
		transcriber: stt,
		recorder:    opts.Recorder,
		limit:       opts.Limit,
		sttTimeout:  timeout,
	}
}

// SessionView describes a newly started session.
type SessionView struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

// TrustView is the externally visible trust state of a session.
type TrustView struct {
	SessionID    string                `json:"session_id"`
	Score        int                   `json:"score"`
	Human        bool                  `json:"human"`
	Threshold    int                   `json:"threshold"`
	Breakdown    trust.Breakdown       `json:"breakdown"`
	Interactions int                   `json:"interactions"`
	Timeline     []trust.TimelineEntry `json:"timeline"`
}

// CheckoutView is the outcome of a checkout attempt.
type CheckoutView struct {
	SessionID         string   `json:"session_id"`
	ChallengeRequired bool     `json:"challenge_required"`
	Score             int      `json:"score"`
	Threshold         int      `json:"threshold"`
	Message           string   `json:"message"`
	Hints             []string `json:"hints,omitempty"`
}

// Catalog returns the searchable catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.engine.Catalog()
}

// Examples returns the suggested example queries.
func (s *Service) Examples() []string {
	return search.Examples()
}

// ActiveSessions returns the number of live sessions.
func (s *Service) ActiveSessions() int {
	return s.sessions.Len()
}

// StartSession opens a new session with an empty log and a zero score.
func (s *Service) StartSession() SessionView {
	sess := s.sessions.Create()
	return SessionView{ID: sess.ID, StartedAt: sess.Start}
}

// EndSession discards a session and its log.
func (s *Service) EndSession(id string) error {
	if !s.sessions.End(id) {
		return ErrSessionNotFound
	}
	return nil
}

// Search logs the query as an interaction and ranks the catalog against it.
// Blank text returns an empty response and logs nothing.
func (s *Service) Search(sessionID, text, inputType string) (search.Response, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return search.Response{}, err
	}
	inputType, err = normalizeInputType(inputType)
	if err != nil {
		return search.Response{}, err
	}

	if strings.TrimSpace(text) == "" {
		return search.Response{
			Query:    text,
			Keywords: []string{},
			Results:  []search.Result{},
		}, nil
	}

	action := ActionSearch
	if inputType == analytics.InputVoice {
		action = ActionVoiceSearch
	}
	s.append(sess, action, trust.Metadata{
		"query_length": utf8.RuneCountInString(text),
		"input_type":   inputType,
	})

	start := time.Now()
	resp := s.engine.Search(text, s.limit)
	took := time.Since(start)

	metrics.ObserveSearch(inputType, resp.Total, took)
	if s.recorder != nil {
		s.recorder.Record(analytics.NewSearchEvent(inputType, resp, took))
	}

	log.WithFields(log.Fields{
		"session":  sess.ID,
		"input":    inputType,
		"keywords": len(resp.Keywords),
		"results":  resp.Total,
	}).Debug("search")
	return resp, nil
}

// Record appends an arbitrary interaction. Any non-blank action name is
// accepted; unknown names still count toward variety.
func (s *Service) Record(sessionID, action string, metadata map[string]any) (TrustView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return TrustView{}, err
	}
	if strings.TrimSpace(action) == "" {
		return TrustView{}, ErrEmptyAction
	}
	s.append(sess, action, metadata)
	return trustView(sess), nil
}

// UseExample logs a click on the example query at index and returns the
// query text.
func (s *Service) UseExample(sessionID string, index int) (string, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(search.ExampleQueries) {
		return "", fmt.Errorf("%w: %d", ErrUnknownExample, index)
	}
	s.append(sess, ActionExampleClick, trust.Metadata{"example": index})
	return search.ExampleQueries[index], nil
}

// ViewProduct logs that a result was opened. rank is its 1-based position
// in the result list, 0 when unknown.
func (s *Service) ViewProduct(sessionID, productID string, rank int) (catalog.Product, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return catalog.Product{}, err
	}
	p, ok := s.Catalog().Get(productID)
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	md := trust.Metadata{"product_id": p.ID}
	if rank > 0 {
		md["product_rank"] = rank
	}
	s.append(sess, ActionProductView, md)
	return p, nil
}

// Trust reports the session's current score and recent activity.
func (s *Service) Trust(sessionID string) (TrustView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return TrustView{}, err
	}
	return trustView(sess), nil
}

// Transcribe converts audio to text. On success a "voice_transcribe"
// interaction is logged; a failed attempt changes nothing.
func (s *Service) Transcribe(ctx context.Context, sessionID string, audio transcribe.Audio) (string, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.sttTimeout)
	defer cancel()

	text, err := s.transcriber.Transcribe(ctx, audio)
	metrics.ObserveTranscription(err)
	if err != nil {
		log.WithError(err).WithField("session", sess.ID).Warn("transcription failed")
		return "", fmt.Errorf("transcribe: %w", err)
	}

	s.append(sess, ActionVoiceTranscribe, trust.Metadata{
		"text_length": utf8.RuneCountInString(text),
	})
	return text, nil
}

// Checkout consults the gate. A verified human checks out without a
// challenge and the attempt is logged; anyone else is asked to verify.
func (s *Service) Checkout(sessionID string) (CheckoutView, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return CheckoutView{}, err
	}

	d := sess.Decision()
	metrics.ObserveGate(d.Human)

	view := CheckoutView{
		SessionID: sess.ID,
		Score:     d.Score,
		Threshold: d.Threshold,
	}
	if d.Human {
		s.append(sess, ActionCheckoutAttempt, nil)
		view.Message = "Human verified, no challenge needed"
		return view, nil
	}

	view.ChallengeRequired = true
	view.Message = "Building trust, continue browsing to skip the challenge"
	view.Hints = append([]string(nil), trustHints...)
	return view, nil
}

func (s *Service) lookup(id string) (*trust.Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) append(sess *trust.Session, action string, md trust.Metadata) {
	sess.Append(action, md)
	metrics.ObserveInteraction(action)
}

func trustView(sess *trust.Session) TrustView {
	b := sess.Breakdown()
	d := sess.Decision()
	return TrustView{
		SessionID:    sess.ID,
		Score:        d.Score,
		Human:        d.Human,
		Threshold:    d.Threshold,
		Breakdown:    b,
		Interactions: sess.Len(),
		Timeline:     sess.Timeline(TimelineLength),
	}
}

func normalizeInputType(t string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", analytics.InputText:
		return analytics.InputText, nil
	case analytics.InputVoice:
		return analytics.InputVoice, nil
	default:
		return "", ErrInvalidInputType
	}
}
