// Package session persists regenerate memory across the separate process
// invocations that make up one interactive shell session.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/hmartin/llmsuggest/internal/core"
	"github.com/hmartin/llmsuggest/internal/orchestrate"
)

// staleAfter is the age past which abandoned session files are pruned.
// Session files are normally removed by the shell's exit hook; pruning
// covers sessions that died without running it.
const staleAfter = 24 * time.Hour

var validSessionID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store reads and writes per-session state files.
type Store struct {
	dir string
}

// NewStore opens the session directory and prunes stale session files.
func NewStore() (*Store, error) {
	dir, err := core.SessionsDir()
	if err != nil {
		return nil, err
	}

	s := &Store{dir: dir}
	s.pruneStale()
	return s, nil
}

// Load returns the session state for id. A missing or unreadable file
// degrades to an empty session: losing regenerate memory must never fail an
// invocation.
func (s *Store) Load(id string) (*orchestrate.Session, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &orchestrate.Session{}, nil
	}

	var session orchestrate.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return &orchestrate.Session{}, nil
	}

	return &session, nil
}

// Save writes the session state for id. The file is owner-only: it holds
// the user's query text.
func (s *Store) Save(id string, session *orchestrate.Session) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Remove deletes the session state for id.
func (s *Store) Remove(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (s *Store) path(id string) (string, error) {
	if !validSessionID.MatchString(id) {
		return "", fmt.Errorf("invalid session id: %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *Store) pruneStale() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-staleAfter)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.dir, entry.Name()))
		}
	}
}
