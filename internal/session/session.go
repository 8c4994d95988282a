// Package session persists the local auth state: the bearer token and a
// cached copy of the user profile. It is cleared on logout or whenever the
// backend rejects the token.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

// ErrNotLoggedIn is returned when no session file exists.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the persisted auth state.
type Session struct {
	Token   string      `yaml:"token"`
	User    models.User `yaml:"user"`
	SavedAt time.Time   `yaml:"saved_at"`
}

// Store reads and writes the session file under the state directory.
type Store struct {
	path string
}

// NewStore creates a store rooted at stateDir.
func NewStore(stateDir string) *Store {
	return &Store{path: filepath.Join(stateDir, "session.yaml")}
}

// Load returns the current session, or ErrNotLoggedIn if none exists.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.Token == "" {
		return nil, ErrNotLoggedIn
	}
	return &sess, nil
}

// Save writes the session. The file holds a bearer token, so it is written
// with owner-only permissions.
func (s *Store) Save(sess *Session) error {
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the current bearer token, or "" when logged out. It
// satisfies api.TokenSource.
func (s *Store) Token() string {
	sess, err := s.Load()
	if err != nil {
		return ""
	}
	return sess.Token
}
