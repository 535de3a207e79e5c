// Package finiedir resolves the application data directory used for the
// persisted transcript and telemetry events.
package finiedir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Name is the default directory created under the working directory.
const Name = ".finie"

// Dir returns the absolute data directory, creating it if needed.
// FINIE_DATA_DIR overrides the default location.
func Dir() (string, error) {
	dir := os.Getenv("FINIE_DATA_DIR")
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, Name)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs(%s): %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// EventsPath returns the JSONL telemetry file path inside the data dir.
func EventsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "events.jsonl"), nil
}

// ConversationPath returns the persisted transcript path inside the data dir.
func ConversationPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conversation.json"), nil
}
