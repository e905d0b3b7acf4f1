package core

import (
	"fmt"
	"os"
	"path/filepath"
)

const DataDirName = ".llmsuggest"

// DataDir returns the path to the llmsuggest data directory, creating it if needed.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, DataDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dir, nil
}

// ConfigFile returns the path to the YAML config file.
func ConfigFile() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LogFile returns the path to the log file.
func LogFile() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "llmsuggest.log"), nil
}

// HistoryFile returns the path to the suggestion history database.
func HistoryFile() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// SessionsDir returns the directory holding per-session regenerate state,
// creating it if needed.
func SessionsDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	sessions := filepath.Join(dir, "sessions")
	if err := os.MkdirAll(sessions, 0700); err != nil {
		return "", fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return sessions, nil
}
