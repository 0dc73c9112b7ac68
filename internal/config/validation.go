package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	logLevels  = []string{"debug", "verbose", "info", "warn", "warning", "error", "quiet", "silent"}
	logFormats = []string{"text", "json"}
)

// Validate checks every setting and reports all problems at once.
func Validate(cfg *Config) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		add("server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeoutSeconds < 0 {
		add("server.shutdownTimeoutSeconds: must not be negative")
	}

	if cfg.Search.Limit < 0 {
		add("search.limit: must not be negative")
	}

	t := cfg.Trust
	if t.HumanThreshold < 0 || t.HumanThreshold > 100 {
		add("trust.humanThreshold %d: must be between 0 and 100", t.HumanThreshold)
	}
	if t.TimeBonusStepSeconds <= 0 {
		add("trust.timeBonusStepSeconds: must be positive")
	}
	if t.TimeBonusCap < 0 || t.VarietyPoints < 0 || t.SearchBonus < 0 || t.VoiceBonus < 0 || t.BotPenalty < 0 {
		add("trust: bonuses and penalties must not be negative")
	}
	if t.BotWindow < 2 {
		add("trust.botWindow %d: must be at least 2", t.BotWindow)
	}
	if t.BotMinEvents < 2 || t.BotMinEvents > t.BotWindow {
		add("trust.botMinEvents %d: must be between 2 and botWindow", t.BotMinEvents)
	}
	if t.BotGapMillis <= 0 {
		add("trust.botGapMillis: must be positive")
	}

	if cfg.Session.IdleTimeoutMinutes <= 0 {
		add("session.idleTimeoutMinutes: must be positive")
	}

	if cfg.Transcription.TimeoutSeconds <= 0 {
		add("transcription.timeoutSeconds: must be positive")
	}
	if u := cfg.Transcription.BaseURL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		add("transcription.baseURL %q: must be an http(s) URL", u)
	}

	if cfg.Analytics.RetentionDays < 0 {
		add("analytics.retentionDays: must not be negative")
	}

	if !slices.Contains(logLevels, strings.ToLower(cfg.Logging.Level)) {
		add("logging.level %q: must be one of debug, info, warn, error", cfg.Logging.Level)
	}
	if !slices.Contains(logFormats, strings.ToLower(cfg.Logging.Format)) {
		add("logging.format %q: must be text or json", cfg.Logging.Format)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
