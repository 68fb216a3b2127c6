package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// currentPointer is <state>/state/current.json, the session a resumed
// console reattaches to.
type currentPointer struct {
	SchemaVersion int    `json:"schemaVersion"`
	SessionID     string `json:"sessionId"`
	UpdatedAt     string `json:"updatedAt"`
}

func currentPath(stateDir string) string {
	return filepath.Join(stateDir, "state", "current.json")
}

// withPointerLock serializes access to the pointer file between consoles
// started against the same state dir.
func withPointerLock(stateDir string, fn func(path string) error) error {
	path := currentPath(stateDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock session pointer: %w", err)
	}
	defer lock.Unlock() //nolint:errcheck // best-effort release
	return fn(path)
}

func readPointer(path string) currentPointer {
	var cur currentPointer
	if raw, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(raw, &cur)
	}
	return cur
}

func writePointer(path string, sessionID string) error {
	cur := currentPointer{
		SchemaVersion: 1,
		SessionID:     sessionID,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.MarshalIndent(cur, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func newSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// createNewSessionID makes a fresh session directory.
func createNewSessionID(stateDir string) (string, error) {
	id := newSessionID()
	if err := os.MkdirAll(filepath.Join(stateDir, id), 0o755); err != nil {
		return id, fmt.Errorf("create session dir: %w", err)
	}
	return id, nil
}

// getOrCreateSessionID returns the current session, creating and recording
// one when there is none.
func getOrCreateSessionID(stateDir string) (string, error) {
	var id string
	err := withPointerLock(stateDir, func(path string) error {
		if cur := readPointer(path); strings.TrimSpace(cur.SessionID) != "" {
			id = cur.SessionID
			return nil
		}
		var err error
		if id, err = createNewSessionID(stateDir); err != nil {
			return err
		}
		return writePointer(path, id)
	})
	return id, err
}

func setCurrentSessionID(stateDir string, sessionID string) error {
	return withPointerLock(stateDir, func(path string) error {
		return writePointer(path, sessionID)
	})
}

// resolveSession picks the session for this run: an explicit override, the
// recorded current session when resuming, or a new one.
func resolveSession(stateDir, override string, resume bool) (string, error) {
	if id := strings.TrimSpace(override); id != "" {
		if err := os.MkdirAll(filepath.Join(stateDir, id), 0o755); err != nil {
			return id, fmt.Errorf("create session dir: %w", err)
		}
		return id, setCurrentSessionID(stateDir, id)
	}
	if resume {
		return getOrCreateSessionID(stateDir)
	}
	id, err := createNewSessionID(stateDir)
	if err != nil {
		return id, err
	}
	return id, setCurrentSessionID(stateDir, id)
}
