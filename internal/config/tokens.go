package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
)

const tokenFile = "token.json"

// ErrLocked is returned when another pnp process holds the token lock.
var ErrLocked = errors.New("token store is locked, another instance may be running")

// TokenStore persists the delegated OAuth token as JSON under an exclusive
// file lock.
type TokenStore struct {
	dir string
}

// NewTokenStore returns a store that keeps token.json in dir.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{dir: dir}
}

// Path returns the token file location.
func (s *TokenStore) Path() string {
	return filepath.Join(s.dir, tokenFile)
}

func (s *TokenStore) withLock(fn func() error) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	lock := flock.New(s.Path() + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring token lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

// Load returns the stored token, or nil when nobody has logged in.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	var tok *oauth2.Token
	err := s.withLock(func() error {
		data, err := os.ReadFile(s.Path())
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("reading token file: %w", err)
		}
		tok = &oauth2.Token{}
		if err := json.Unmarshal(data, tok); err != nil {
			return fmt.Errorf("unmarshalling token: %w", err)
		}
		return nil
	})
	return tok, err
}

// Save replaces the stored token.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	return s.withLock(func() error {
		data, err := json.MarshalIndent(tok, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling token: %w", err)
		}
		if err := os.WriteFile(s.Path(), data, 0600); err != nil {
			return fmt.Errorf("writing token file: %w", err)
		}
		return nil
	})
}

// Delete removes the stored token. Deleting a missing token is not an error.
func (s *TokenStore) Delete() error {
	return s.withLock(func() error {
		if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting token file: %w", err)
		}
		return nil
	})
}
