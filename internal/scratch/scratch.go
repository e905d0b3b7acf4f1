// Package scratch implements the ephemeral slot used to hand one backend
// response from the background task to the foreground. A slot is a file with
// an unpredictable name, readable and writable only by the owning user, and
// removed at the end of every invocation.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Slot is a single-use response carrier. Exactly one writer writes it, then
// exactly one reader reads it, then it is removed.
type Slot struct {
	path string
}

// NewSlot creates the slot file. Creation is exclusive so a predicted name
// cannot be pre-planted by another local user.
func NewSlot() (*Slot, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("llmsuggest-%s", uuid.NewString()))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch slot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to create scratch slot: %w", err)
	}

	return &Slot{path: path}, nil
}

// Path returns the slot's filesystem path.
func (s *Slot) Path() string {
	return s.path
}

// Write replaces the slot's content in one atomic step: the text is written
// to a sibling temp file and renamed over the slot, so a reader never
// observes a partial response.
func (s *Slot) Write(text string) error {
	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to stage scratch write: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to stage scratch write: %w", err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write scratch slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write scratch slot: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish scratch slot: %w", err)
	}

	return nil
}

// Read returns the slot's content.
func (s *Slot) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read scratch slot: %w", err)
	}
	return string(data), nil
}

// Remove deletes the slot. It is safe to call on every exit path; a slot
// that is already gone is not an error.
func (s *Slot) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove scratch slot: %w", err)
	}
	return nil
}
