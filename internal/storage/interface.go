/*
Package storage implements a persistent store for anonymised search analytics.

Only aggregate facts about searches are kept: a hash of the query, how it
was entered, and what it matched. Query text, session IDs, trust scores and
interaction logs are never written to disk.

The database defaults to ~/.describo/analytics.db and uses modernc.org/sqlite
(a pure Go, CGo-free implementation). If it cannot be opened the store
disables itself and every operation becomes a no-op.
*/
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Storage defines the interface for persistent storage operations.
type Storage interface {
	// Init opens the database and runs migrations.
	Init() error

	// RecordSearch stores one search.
	RecordSearch(search SearchRecord) error

	// RecentSearches returns the latest searches, newest first.
	RecentSearches(limit int) ([]SearchRecord, error)

	// ProductHitCounts counts how often each product ranked first since a
	// given time, most frequent first.
	ProductHitCounts(since time.Time) ([]ProductHits, error)

	// Cleanup removes records older than the retention period.
	Cleanup(retention time.Duration) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// DefaultPath returns ~/.describo/analytics.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".describo", "analytics.db"), nil
}

// NewStorage creates a SQLite store at dbPath, or at DefaultPath when
// dbPath is empty. The parent directory is created on Init.
func NewStorage(dbPath string) *SQLiteStorage {
	if strings.TrimSpace(dbPath) == "" {
		p, err := DefaultPath()
		if err != nil {
			log.WithError(err).Warn("analytics storage disabled")
			return &SQLiteStorage{enabled: false}
		}
		dbPath = p
	}
	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: true,
	}
}

// Path returns the database file path, empty when disabled at construction.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Enabled reports whether the store is usable.
func (s *SQLiteStorage) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled && s.db != nil
}

// Init opens the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation).
func (s *SQLiteStorage) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		fail := func(err error) {
			initErr = err
			s.enabled = false
			if s.db != nil {
				s.db.Close()
				s.db = nil
			}
			log.WithError(err).Warn("analytics storage disabled")
		}

		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
			fail(fmt.Errorf("failed to create db directory: %w", err))
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			fail(fmt.Errorf("failed to open database: %w", err))
			return
		}
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		s.db = db

		if err := db.Ping(); err != nil {
			fail(fmt.Errorf("failed to ping database: %w", err))
			return
		}

		if err := migrate(db); err != nil {
			fail(fmt.Errorf("failed to run migrations: %w", err))
			return
		}
	})

	return initErr
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// HashQuery creates a SHA256 hash of a query string for privacy. Queries
// are trimmed and lowercased first so trivially different inputs collide.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(hash[:])
}
