// Package histstore keeps a persistent log of accepted suggestions in a
// local SQLite database.
package histstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded suggestion.
type Entry struct {
	ID        int64
	CreatedAt time.Time
	Provider  string
	Mode      string
	Prompt    string
	Command   string
}

// Store is a SQLite-backed suggestion log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the suggestion database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS suggestions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at INTEGER NOT NULL,
			provider TEXT NOT NULL,
			mode TEXT NOT NULL,
			prompt TEXT NOT NULL,
			command TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_suggestions_created_at ON suggestions(created_at);
	`)
	return err
}

// Record inserts one suggestion. It satisfies the orchestrator's Recorder.
func (s *Store) Record(provider string, mode, prompt, command string) error {
	_, err := s.db.Exec(
		`INSERT INTO suggestions (created_at, provider, mode, prompt, command) VALUES (?, ?, ?, ?, ?)`,
		time.Now().Unix(), provider, mode, prompt, command,
	)
	if err != nil {
		return fmt.Errorf("failed to record suggestion: %w", err)
	}
	return nil
}

// Recent returns up to limit suggestions, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, provider, mode, prompt, command
		 FROM suggestions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &createdAt, &e.Provider, &e.Mode, &e.Prompt, &e.Command); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Get returns the suggestion with the given id.
func (s *Store) Get(id int64) (Entry, error) {
	var e Entry
	var createdAt int64
	err := s.db.QueryRow(
		`SELECT id, created_at, provider, mode, prompt, command FROM suggestions WHERE id = ?`, id).
		Scan(&e.ID, &createdAt, &e.Provider, &e.Mode, &e.Prompt, &e.Command)
	if err == sql.ErrNoRows {
		return Entry{}, fmt.Errorf("no suggestion with id %d", id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load suggestion: %w", err)
	}
	e.CreatedAt = time.Unix(createdAt, 0)
	return e, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
