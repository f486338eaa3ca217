// Package auth manages Schwab OAuth tokens: a file-backed store plus a
// manager that walks the fallback chain from cached token to refresh grant to
// a full interactive authorization.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoToken means no stored credentials exist; the user has to run the
// interactive login once.
var ErrNoToken = errors.New("auth: no stored token, run `buywrite login`")

// TokenData is one issued token pair with its access-token expiry.
type TokenData struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// Valid reports whether the access token is still usable, with a minute of
// slack so a token never expires mid-request.
func (t TokenData) Valid() bool {
	return t.AccessToken != "" && time.Until(t.Expiry) > time.Minute
}

// Store persists token data as a mode-0600 JSON file.
type Store struct {
	path string
}

// NewStore creates a store at the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore places the token file under the user config directory.
func DefaultStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	return NewStore(filepath.Join(dir, "buywrite", "token.json")), nil
}

// Load reads the stored token, returning ErrNoToken when none exists.
func (s *Store) Load() (TokenData, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return TokenData{}, ErrNoToken
	}
	if err != nil {
		return TokenData{}, fmt.Errorf("reading token file: %w", err)
	}
	var t TokenData
	if err := json.Unmarshal(raw, &t); err != nil {
		return TokenData{}, fmt.Errorf("decoding token file: %w", err)
	}
	return t, nil
}

// Save writes the token, creating the parent directory if needed.
func (s *Store) Save(t TokenData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	raw, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Clear removes any stored token.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
