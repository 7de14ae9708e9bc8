package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const lastAnswerKey = "last_answer"

// Store persists the source list and small bits of bot state in SQLite.
// The corpus index itself is never persisted; it is rebuilt from the raw
// sources on every reload.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore opens (and if needed creates) the state database at path.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store at %s: %w", path, err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS sources (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate state store: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Sources returns all source URLs in insertion order.
func (s *Store) Sources() ([]string, error) {
	rows, err := s.db.Query("SELECT url FROM sources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sources: %w", err)
	}
	return urls, nil
}

// AddSource appends a source URL to the list.
func (s *Store) AddSource(url string) error {
	if _, err := s.db.Exec("INSERT INTO sources (url) VALUES (?)", url); err != nil {
		return fmt.Errorf("failed to add source %s: %w", url, err)
	}
	s.logger.Info("Added babble source", zap.String("url", url))
	return nil
}

// RemoveSource deletes the index-th source in listing order.
func (s *Store) RemoveSource(index int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT id FROM sources ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan source row: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read sources: %w", err)
	}

	if index < 0 || index >= len(ids) {
		return fmt.Errorf("source index %d out of range, have %d sources", index, len(ids))
	}
	if _, err := tx.Exec("DELETE FROM sources WHERE id = ?", ids[index]); err != nil {
		return fmt.Errorf("failed to remove source %d: %w", index, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit source removal: %w", err)
	}
	s.logger.Info("Removed babble source", zap.Int("index", index))
	return nil
}

// SeedSources inserts the given URLs, but only when the table is still
// empty, so a restart never clobbers sources added at runtime.
func (s *Store) SeedSources(urls []string) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count); err != nil {
		return fmt.Errorf("failed to count sources: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, url := range urls {
		if err := s.AddSource(url); err != nil {
			return err
		}
	}
	return nil
}

// LastAnswer returns the timestamp of the last autonomous answer. ok is
// false when none was recorded yet.
func (s *Store) LastAnswer() (time.Time, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM state WHERE key = ?", lastAnswerKey).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last answer time: %w", err)
	}
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt last answer time %q: %w", value, err)
	}
	return time.Unix(unix, 0), true, nil
}

// SetLastAnswer records the timestamp of an autonomous answer.
func (s *Store) SetLastAnswer(t time.Time) error {
	value := strconv.FormatInt(t.Unix(), 10)
	_, err := s.db.Exec(
		"INSERT INTO state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		lastAnswerKey, value,
	)
	if err != nil {
		return fmt.Errorf("failed to record last answer time: %w", err)
	}
	return nil
}
