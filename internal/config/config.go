/*
Package config handles loading, validating and saving describo configuration.

Configuration is stored in ~/.describo.json. Every key is optional; missing
keys keep their defaults. Environment variables (optionally from a .env
file) override the file.

Schema:

	{
	  "server":        {"host": "127.0.0.1", "port": 8080, "metrics": true},
	  "catalog":       {"path": "/etc/describo/products.yaml"},
	  "search":        {"limit": 5},
	  "trust":         {"humanThreshold": 80, "botGapMillis": 500, ...},
	  "session":       {"idleTimeoutMinutes": 30},
	  "transcription": {"model": "whisper-large-v3", "timeoutSeconds": 30},
	  "analytics":     {"enabled": true, "retentionDays": 30},
	  "logging":       {"level": "info", "format": "text"}
	}
*/
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/khanglvm/describo/internal/trust"
)

// Config represents the root configuration structure.
type Config struct {
	Server        ServerSettings        `json:"server"`
	Catalog       CatalogSettings       `json:"catalog"`
	Search        SearchSettings        `json:"search"`
	Trust         TrustSettings         `json:"trust"`
	Session       SessionSettings       `json:"session"`
	Transcription TranscriptionSettings `json:"transcription"`
	Analytics     AnalyticsSettings     `json:"analytics"`
	Logging       LoggingSettings       `json:"logging"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Host                   string `json:"host" env:"DESCRIBO_HOST"`
	Port                   int    `json:"port" env:"DESCRIBO_PORT"`
	Metrics                bool   `json:"metrics" env:"DESCRIBO_METRICS"`
	ShutdownTimeoutSeconds int    `json:"shutdownTimeoutSeconds" env:"DESCRIBO_SHUTDOWN_TIMEOUT"`
}

// CatalogSettings points at the product catalog. An empty path uses the
// built-in catalog.
type CatalogSettings struct {
	Path string `json:"path,omitempty" env:"DESCRIBO_CATALOG"`
}

// SearchSettings tunes result presentation.
type SearchSettings struct {
	// Limit caps displayed results; 0 shows every match.
	Limit int `json:"limit" env:"DESCRIBO_SEARCH_LIMIT"`
}

// TrustSettings mirrors trust.Params in config-friendly units.
type TrustSettings struct {
	HumanThreshold       int `json:"humanThreshold" env:"DESCRIBO_HUMAN_THRESHOLD"`
	TimeBonusCap         int `json:"timeBonusCap"`
	TimeBonusStepSeconds int `json:"timeBonusStepSeconds"`
	VarietyPoints        int `json:"varietyPoints"`
	SearchBonus          int `json:"searchBonus"`
	VoiceBonus           int `json:"voiceBonus"`
	BotWindow            int `json:"botWindow"`
	BotMinEvents         int `json:"botMinEvents"`
	BotGapMillis         int `json:"botGapMillis"`
	BotPenalty           int `json:"botPenalty"`
}

// SessionSettings controls session lifetime.
type SessionSettings struct {
	IdleTimeoutMinutes int `json:"idleTimeoutMinutes" env:"DESCRIBO_SESSION_IDLE_MINUTES"`
}

// TranscriptionSettings configures the speech-to-text collaborator. Without
// an API key voice input is disabled.
type TranscriptionSettings struct {
	APIKey         string `json:"apiKey,omitempty" env:"GROQ_API_KEY"`
	BaseURL        string `json:"baseURL,omitempty" env:"DESCRIBO_GROQ_BASE_URL"`
	Model          string `json:"model" env:"DESCRIBO_GROQ_MODEL"`
	Language       string `json:"language" env:"DESCRIBO_GROQ_LANGUAGE"`
	TimeoutSeconds int    `json:"timeoutSeconds" env:"DESCRIBO_GROQ_TIMEOUT"`
}

// AnalyticsSettings configures the anonymised search history.
type AnalyticsSettings struct {
	Enabled       bool   `json:"enabled" env:"DESCRIBO_ANALYTICS"`
	DBPath        string `json:"dbPath,omitempty" env:"DESCRIBO_ANALYTICS_DB"`
	RetentionDays int    `json:"retentionDays" env:"DESCRIBO_ANALYTICS_RETENTION_DAYS"`
}

// LoggingSettings configures log output.
type LoggingSettings struct {
	Level  string `json:"level" env:"DESCRIBO_LOG_LEVEL"`
	Format string `json:"format" env:"DESCRIBO_LOG_FORMAT"`
	File   string `json:"file,omitempty" env:"DESCRIBO_LOG_FILE"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	p := trust.DefaultParams()
	return &Config{
		Server: ServerSettings{
			Host:                   "127.0.0.1",
			Port:                   8080,
			Metrics:                true,
			ShutdownTimeoutSeconds: 10,
		},
		Search: SearchSettings{Limit: 5},
		Trust: TrustSettings{
			HumanThreshold:       p.HumanThreshold,
			TimeBonusCap:         p.TimeBonusCap,
			TimeBonusStepSeconds: int(p.TimeBonusStep / time.Second),
			VarietyPoints:        p.VarietyPoints,
			SearchBonus:          p.SearchBonus,
			VoiceBonus:           p.VoiceBonus,
			BotWindow:            p.BotWindow,
			BotMinEvents:         p.BotMinEvents,
			BotGapMillis:         int(p.BotGap / time.Millisecond),
			BotPenalty:           p.BotPenalty,
		},
		Session: SessionSettings{IdleTimeoutMinutes: 30},
		Transcription: TranscriptionSettings{
			Model:          "whisper-large-v3",
			Language:       "en",
			TimeoutSeconds: 30,
		},
		Analytics: AnalyticsSettings{
			Enabled:       true,
			RetentionDays: 30,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.describo.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".describo.json"), nil
}

// TrustParams converts the trust settings to scorer parameters.
func (c *Config) TrustParams() trust.Params {
	p := trust.DefaultParams()
	t := c.Trust
	p.HumanThreshold = t.HumanThreshold
	p.TimeBonusCap = t.TimeBonusCap
	p.TimeBonusStep = time.Duration(t.TimeBonusStepSeconds) * time.Second
	p.VarietyPoints = t.VarietyPoints
	p.SearchBonus = t.SearchBonus
	p.VoiceBonus = t.VoiceBonus
	p.BotWindow = t.BotWindow
	p.BotMinEvents = t.BotMinEvents
	p.BotGap = time.Duration(t.BotGapMillis) * time.Millisecond
	p.BotPenalty = t.BotPenalty
	return p
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// IdleTimeout is how long an untouched session lives.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutMinutes) * time.Minute
}

// ShutdownTimeout bounds graceful HTTP shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// TranscriptionTimeout bounds one speech-to-text call.
func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.Transcription.TimeoutSeconds) * time.Second
}

// Retention is how long analytics rows are kept.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Analytics.RetentionDays) * 24 * time.Hour
}
