package cli

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/khanglvm/describo/internal/analytics"
	"github.com/khanglvm/describo/internal/app"
	"github.com/khanglvm/describo/internal/catalog"
	"github.com/khanglvm/describo/internal/config"
	"github.com/khanglvm/describo/internal/logging"
	"github.com/khanglvm/describo/internal/session"
	"github.com/khanglvm/describo/internal/storage"
	"github.com/khanglvm/describo/internal/transcribe"
)

// loadConfig resolves configuration and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) io.Closer {
	return logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	c, err := catalog.LoadOrDefault(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	source := cfg.Catalog.Path
	if source == "" {
		source = "built-in"
	}
	log.WithFields(log.Fields{"source": source, "products": c.Len()}).Info("catalog loaded")
	return c, nil
}

// runtime is the set of long-lived components behind serve and mcp.
type runtime struct {
	cfg      *config.Config
	svc      *app.Service
	sessions *session.Registry
	store    *storage.SQLiteStorage
	recorder *analytics.Recorder
}

// buildRuntime wires catalog, sessions, transcription and analytics into a
// service. The session sweeper is started; Close stops everything.
func buildRuntime(cfg *config.Config) (*runtime, error) {
	c, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	params := cfg.TrustParams()
	sessions := session.NewRegistry(session.Options{
		IdleTimeout: cfg.IdleTimeout(),
		Params:      &params,
	})

	rt := &runtime{cfg: cfg, sessions: sessions}
	if cfg.Analytics.Enabled {
		rt.store = storage.NewStorage(cfg.Analytics.DBPath)
		rt.recorder = analytics.NewRecorder(rt.store, analytics.Options{})
	}

	stt := transcribe.New(transcribe.GroqConfig{
		APIKey:   cfg.Transcription.APIKey,
		BaseURL:  cfg.Transcription.BaseURL,
		Model:    cfg.Transcription.Model,
		Language: cfg.Transcription.Language,
		Timeout:  cfg.TranscriptionTimeout(),
	})
	if _, disabled := stt.(transcribe.Disabled); disabled {
		log.Info("voice transcription disabled (no GROQ_API_KEY)")
	}

	rt.svc = app.New(app.Options{
		Catalog:              c,
		Sessions:             sessions,
		Transcriber:          stt,
		Recorder:             rt.recorder,
		Limit:                cfg.Search.Limit,
		TranscriptionTimeout: cfg.TranscriptionTimeout(),
	})

	sessions.Start()
	return rt, nil
}

// Close stops background work and flushes pending analytics.
func (r *runtime) Close() {
	r.sessions.Stop()
	if r.recorder != nil {
		r.recorder.Stop()
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			log.WithError(err).Warn("failed to close analytics storage")
		}
	}
}
