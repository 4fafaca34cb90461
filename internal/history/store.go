// Package history records what was played and when.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Entry is one row of playback history.
type Entry struct {
	ID            int64     `json:"id"`
	URI           string    `json:"uri"`
	Title         string    `json:"title,omitempty"`
	PlayCount     int64     `json:"play_count"`
	FirstPlayedAt time.Time `json:"first_played_at"`
	LastPlayedAt  time.Time `json:"last_played_at"`
}

// Store persists playback history in the player database.
type Store struct {
	db *sql.DB
}

// NewStore wraps an initialized database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record notes a playback of uri, inserting a new row or bumping the play
// count of an existing one. An empty title keeps whatever title the row
// already has.
func (s *Store) Record(ctx context.Context, uri, title string) error {
	if uri == "" {
		return fmt.Errorf("history: empty uri")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playback_history (uri, title) VALUES (?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			play_count = play_count + 1,
			title = CASE WHEN excluded.title != '' THEN excluded.title ELSE title END,
			last_played_at = CURRENT_TIMESTAMP`,
		uri, title,
	)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", uri, err)
	}
	return nil
}

// Recent returns up to limit entries, most recently played first. A
// non-positive limit falls back to 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uri, title, play_count, first_played_at, last_played_at
		FROM playback_history
		ORDER BY last_played_at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.URI, &e.Title, &e.PlayCount, &e.FirstPlayedAt, &e.LastPlayedAt); err != nil {
			return nil, fmt.Errorf("history: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate entries: %w", err)
	}

	return entries, nil
}

// Remove deletes a single entry by id.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM playback_history WHERE id = ?", id); err != nil {
		return fmt.Errorf("history: remove %d: %w", id, err)
	}
	return nil
}

// Clear removes all history entries and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM playback_history")
	if err != nil {
		return 0, fmt.Errorf("history: clear: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history: clear count: %w", err)
	}
	return n, nil
}

// Prune deletes everything but the keep most recently played entries. A
// non-positive keep leaves the table untouched.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM playback_history
		WHERE id NOT IN (
			SELECT id FROM playback_history
			ORDER BY last_played_at DESC, id DESC
			LIMIT ?)`,
		keep,
	)
	if err != nil {
		return fmt.Errorf("history: prune to %d: %w", keep, err)
	}
	return nil
}
