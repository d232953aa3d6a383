package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stockdeck/internal/model"
)

// PersistMode selects which storage location holds the session.
type PersistMode string

const (
	// PersistDurable survives reboots ("remember me").
	PersistDurable PersistMode = "local"
	// PersistSession survives restarts within the current OS session only.
	PersistSession PersistMode = "session"
)

const (
	authFileName   = "auth.json"
	serverFileName = "server.json"
)

// StoredAuth is the payload persisted under both storage locations.
type StoredAuth struct {
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
	Persist PersistMode `json:"persist"`
}

// storedServer is the persisted backend-endpoint selection.
type storedServer struct {
	URL string `json:"url"`
}

// Storage persists auth state across client runs. Two locations mirror the
// browser's localStorage/sessionStorage split: a durable directory and a
// session-scoped one.
type Storage struct {
	durableDir string
	sessionDir string
}

// NewStorage creates a Storage over the two state directories.
func NewStorage(durableDir, sessionDir string) *Storage {
	return &Storage{durableDir: durableDir, sessionDir: sessionDir}
}

// ReadAuth restores a stored session. Durable storage wins over session
// storage when both are present; malformed payloads are removed and skipped.
func (s *Storage) ReadAuth() *StoredAuth {
	for _, dir := range []string{s.durableDir, s.sessionDir} {
		path := filepath.Join(dir, authFileName)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var payload StoredAuth
		if err := json.Unmarshal(data, &payload); err != nil || payload.Token == "" {
			_ = os.Remove(path)
			continue
		}
		return &payload
	}
	return nil
}

// WriteAuth persists the session under the location selected by mode and
// removes it from the other, so a later restore is unambiguous.
func (s *Storage) WriteAuth(payload StoredAuth, mode PersistMode) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode auth payload: %w", err)
	}

	target, other := s.durableDir, s.sessionDir
	if mode == PersistSession {
		target, other = s.sessionDir, s.durableDir
	}

	if err := os.WriteFile(filepath.Join(target, authFileName), data, 0o600); err != nil {
		return fmt.Errorf("write auth payload: %w", err)
	}
	_ = os.Remove(filepath.Join(other, authFileName))
	return nil
}

// ClearAuth removes the session from both locations. Idempotent.
func (s *Storage) ClearAuth() {
	_ = os.Remove(filepath.Join(s.durableDir, authFileName))
	_ = os.Remove(filepath.Join(s.sessionDir, authFileName))
}

// ReadServer returns the persisted backend-endpoint selection, if any.
func (s *Storage) ReadServer() (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.durableDir, serverFileName))
	if err != nil {
		return "", false
	}

	var payload storedServer
	if err := json.Unmarshal(data, &payload); err != nil || payload.URL == "" {
		return "", false
	}
	return payload.URL, true
}

// WriteServer persists the backend-endpoint selection durably.
func (s *Storage) WriteServer(url string) error {
	data, err := json.Marshal(storedServer{URL: url})
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.durableDir, serverFileName), data, 0o600); err != nil {
		return fmt.Errorf("write server selection: %w", err)
	}
	return nil
}

// errNotAuthenticated is returned by operations requiring a session.
var errNotAuthenticated = errors.New("not authenticated")
