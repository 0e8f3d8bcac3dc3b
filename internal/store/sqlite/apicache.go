package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetCached returns the cached response for key if it was written within
// ttlSeconds of now, per spec.md §6's api_cache TTL rule.
func (s *Store) GetCached(ctx context.Context, key string, ttlSeconds int64) ([]byte, bool, error) {
	var response []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT response FROM api_cache
		WHERE cache_key = ? AND (strftime('%s','now') - strftime('%s', created_at)) < ?
	`, key, ttlSeconds).Scan(&response)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached: %w", err)
	}
	return response, true, nil
}

func (s *Store) SetCached(ctx context.Context, key string, response []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_cache (cache_key, response, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(cache_key) DO UPDATE SET response = excluded.response, created_at = CURRENT_TIMESTAMP
	`, key, response)
	if err != nil {
		return fmt.Errorf("set cached: %w", err)
	}
	return nil
}

func (s *Store) ReapExpiredCache(ctx context.Context, ttlSeconds int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM api_cache WHERE (strftime('%s','now') - strftime('%s', created_at)) >= ?
	`, ttlSeconds)
	if err != nil {
		return fmt.Errorf("reap expired cache: %w", err)
	}
	return nil
}
