// Package storage provides SQLite-based persistence for the client's
// identity and match history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/arena/internal/core"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished match as seen by this client.
type MatchRecord struct {
	ID        int64
	RoomCode  string
	SessionID string
	LocalSeat core.Seat
	Winner    core.Seat // core.NoSeat for a tie
	Scores    [core.MaxSeats]int
	Reason    string
	CreatedAt time.Time
}

// Won reports whether the local seat won.
func (m MatchRecord) Won() bool {
	return m.LocalSeat.Valid() && m.Winner == m.LocalSeat
}

// LocalScore returns the local seat's final score.
func (m MatchRecord) LocalScore() int {
	if !m.LocalSeat.Valid() {
		return 0
	}
	return m.Scores[m.LocalSeat]
}

// Stats aggregates the match history.
type Stats struct {
	Played    int
	Wins      int
	Ties      int
	BestScore int
	LastMatch time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SSH sessions share one store; SQLite takes a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS identity (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_code TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL,
			local_seat INTEGER NOT NULL,
			winner_seat INTEGER NOT NULL,
			score0 INTEGER NOT NULL DEFAULT 0,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			score3 INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_session ON matches(session_id);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const sessionKey = "session_id"

// SessionID returns the stable session identifier, generating and storing a
// new UUID on first use.
func (s *Store) SessionID() (string, error) {
	var id string
	err := s.db.QueryRow("SELECT value FROM identity WHERE key = ?", sessionKey).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("storage: cannot query session id: %w", err)
	}

	id = uuid.NewString()
	// another process may have raced us; keep whichever landed first
	if _, err := s.db.Exec("INSERT OR IGNORE INTO identity (key, value) VALUES (?, ?)", sessionKey, id); err != nil {
		return "", fmt.Errorf("storage: cannot save session id: %w", err)
	}
	if err := s.db.QueryRow("SELECT value FROM identity WHERE key = ?", sessionKey).Scan(&id); err != nil {
		return "", fmt.Errorf("storage: cannot query session id: %w", err)
	}
	return id, nil
}

// ResetSessionID discards the stored identifier so the next SessionID call
// generates a fresh one.
func (s *Store) ResetSessionID() error {
	if _, err := s.db.Exec("DELETE FROM identity WHERE key = ?", sessionKey); err != nil {
		return fmt.Errorf("storage: cannot reset session id: %w", err)
	}
	return nil
}

// SaveMatch records a finished match.
// Returns the ID of the inserted record.
func (s *Store) SaveMatch(m MatchRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO matches
		 (room_code, session_id, local_seat, winner_seat, score0, score1, score2, score3, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RoomCode,
		m.SessionID,
		int(m.LocalSeat),
		int(m.Winner),
		m.Scores[0], m.Scores[1], m.Scores[2], m.Scores[3],
		m.Reason,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentMatches retrieves the most recent matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, room_code, session_id, local_seat, winner_seat,
		        score0, score1, score2, score3, reason, created_at
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var results []MatchRecord
	for rows.Next() {
		var m MatchRecord
		var local, winner int
		var createdAt any

		if err := rows.Scan(
			&m.ID,
			&m.RoomCode,
			&m.SessionID,
			&local,
			&winner,
			&m.Scores[0], &m.Scores[1], &m.Scores[2], &m.Scores[3],
			&m.Reason,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.LocalSeat = core.Seat(local)
		m.Winner = core.Seat(winner)
		m.CreatedAt = parseTime(createdAt)

		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// MatchStats aggregates every recorded match.
func (s *Store) MatchStats() (*Stats, error) {
	stats := &Stats{}
	var lastPlayed any

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN local_seat >= 0 AND winner_seat = local_seat THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN winner_seat < 0 THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(CASE local_seat
		            WHEN 0 THEN score0 WHEN 1 THEN score1
		            WHEN 2 THEN score2 WHEN 3 THEN score3 ELSE 0 END), 0),
		        MAX(created_at)
		 FROM matches`,
	).Scan(&stats.Played, &stats.Wins, &stats.Ties, &stats.BestScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get match stats: %w", err)
	}
	stats.LastMatch = parseTime(lastPlayed)

	return stats, nil
}

// ClearMatches deletes the whole match history.
func (s *Store) ClearMatches() error {
	if _, err := s.db.Exec("DELETE FROM matches"); err != nil {
		return fmt.Errorf("storage: cannot clear matches: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
