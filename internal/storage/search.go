package storage

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// RecordSearch records a search query for analytics.
func (s *SQLiteStorage) RecordSearch(search SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	query := `
		INSERT INTO search_history
			(search_id, query_hash, input_type, token_count, results_count, top_product_id, latency_us, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		search.SearchID,
		search.QueryHash,
		search.InputType,
		search.TokenCount,
		search.ResultsCount,
		search.TopProductID,
		search.Latency.Microseconds(),
		formatTime(search.Timestamp),
	)

	if err != nil {
		log.WithError(err).Warn("failed to record search")
	}

	return nil
}

// RecentSearches returns the latest searches, newest first.
func (s *SQLiteStorage) RecentSearches(limit int) ([]SearchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil || limit <= 0 {
		return []SearchRecord{}, nil
	}

	query := `
		SELECT search_id, query_hash, input_type, token_count, results_count, top_product_id, latency_us, timestamp
		FROM search_history
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		log.WithError(err).Warn("failed to query search history")
		return []SearchRecord{}, nil
	}
	defer rows.Close()

	records := []SearchRecord{}
	for rows.Next() {
		var rec SearchRecord
		var latencyUS int64
		var timestampStr string

		if err := rows.Scan(
			&rec.SearchID,
			&rec.QueryHash,
			&rec.InputType,
			&rec.TokenCount,
			&rec.ResultsCount,
			&rec.TopProductID,
			&latencyUS,
			&timestampStr,
		); err != nil {
			log.WithError(err).Warn("failed to scan search row")
			continue
		}

		rec.Latency = time.Duration(latencyUS) * time.Microsecond
		rec.Timestamp, err = parseTime(timestampStr)
		if err != nil {
			log.WithError(err).Warn("failed to parse timestamp")
			continue
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ProductHitCounts counts top-ranked products since a given time.
func (s *SQLiteStorage) ProductHitCounts(since time.Time) ([]ProductHits, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return []ProductHits{}, nil
	}

	query := `
		SELECT top_product_id, COUNT(*) AS hits
		FROM search_history
		WHERE top_product_id != '' AND timestamp >= ?
		GROUP BY top_product_id
		ORDER BY hits DESC, top_product_id ASC
	`

	rows, err := s.db.Query(query, formatTime(since))
	if err != nil {
		log.WithError(err).Warn("failed to query product hits")
		return []ProductHits{}, nil
	}
	defer rows.Close()

	hits := []ProductHits{}
	for rows.Next() {
		var h ProductHits
		if err := rows.Scan(&h.ProductID, &h.Hits); err != nil {
			log.WithError(err).Warn("failed to scan product hits row")
			continue
		}
		hits = append(hits, h)
	}

	return hits, rows.Err()
}

// Cleanup removes old records based on retention policy.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	cutoff := formatTime(time.Now().Add(-retention))

	res, err := s.db.Exec("DELETE FROM search_history WHERE timestamp < ?", cutoff)
	if err != nil {
		log.WithError(err).Warn("failed to cleanup search_history")
		return nil
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.WithField("rows", n).Info("pruned search history")
	}

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		log.WithError(err).Warn("failed to vacuum database")
	}

	return nil
}
