// Package install patches the user's zsh configuration with a
// marker-delimited block that loads the llmsuggest widget.
package install

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	BeginMarker = "# >>> llmsuggest >>>"
	EndMarker   = "# <<< llmsuggest <<<"
)

// Block returns the config block appended to .zshrc, markers included.
func Block() string {
	return strings.Join([]string{
		BeginMarker,
		"# Managed by `llmsuggest install`. Do not edit inside this block.",
		`eval "$(llmsuggest init zsh)"`,
		EndMarker,
	}, "\n")
}

// ZshrcPath returns the path to the user's .zshrc, honoring ZDOTDIR.
func ZshrcPath() (string, error) {
	if zdotdir := os.Getenv("ZDOTDIR"); zdotdir != "" {
		return filepath.Join(zdotdir, ".zshrc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".zshrc"), nil
}

// HasBlock reports whether content contains a llmsuggest block.
func HasBlock(content string) bool {
	return strings.Contains(content, BeginMarker) && strings.Contains(content, EndMarker)
}

// RemoveBlock strips the llmsuggest block (markers included) from content.
// Content without a block is returned unchanged.
func RemoveBlock(content string) string {
	begin := strings.Index(content, BeginMarker)
	if begin == -1 {
		return content
	}
	end := strings.Index(content[begin:], EndMarker)
	if end == -1 {
		return content
	}
	end += begin + len(EndMarker)

	// Swallow the newline following the block, if any.
	if end < len(content) && content[end] == '\n' {
		end++
	}

	before := strings.TrimRight(content[:begin], "\n")
	after := content[end:]
	if before == "" {
		return strings.TrimLeft(after, "\n")
	}
	if after == "" {
		return before + "\n"
	}
	return before + "\n\n" + strings.TrimLeft(after, "\n")
}

// InsertBlock appends the llmsuggest block, replacing any existing one so
// repeated installs stay idempotent.
func InsertBlock(content string) string {
	content = RemoveBlock(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if content != "" {
		content += "\n"
	}
	return content + Block() + "\n"
}

// Backup copies path to a timestamped sibling and returns the backup path.
// A missing original needs no backup and returns "".
func Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().UTC().Format("20060102_150405"))
	if err := os.WriteFile(backupPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	return backupPath, nil
}

// AtomicWrite replaces the file at path with content via a temp file in the
// same directory and a rename, so a crash cannot leave a half-written rc
// file behind.
func AtomicWrite(path, content string) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to stage write: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// Install adds the llmsuggest block to the rc file at path, backing the file
// up first. It returns the backup path ("" if the rc file did not exist).
func Install(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	backupPath, err := Backup(path)
	if err != nil {
		return "", err
	}

	if err := AtomicWrite(path, InsertBlock(string(data))); err != nil {
		return backupPath, err
	}

	return backupPath, nil
}

// Uninstall removes the llmsuggest block from the rc file at path. It
// reports whether a block was found.
func Uninstall(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := string(data)
	if !HasBlock(content) {
		return false, nil
	}

	if _, err := Backup(path); err != nil {
		return false, err
	}

	if err := AtomicWrite(path, RemoveBlock(content)); err != nil {
		return false, err
	}

	return true, nil
}

// Installed reports whether the rc file at path contains the block.
func Installed(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return HasBlock(string(data)), nil
}
