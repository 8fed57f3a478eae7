// Package session persists the signed-in user's token. Only the login,
// signup and logout commands write it; everything else reads.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the account summary returned by the auth endpoints.
type User struct {
	ID               int    `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	SubscriptionTier string `json:"subscription_tier"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// Session is a bearer token plus the user it belongs to.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// now is swapped in tests.
var now = time.Now

// Expiry returns the token's exp claim. ok is false when the token is not a
// JWT or carries no expiry. The signature is not verified; the service does
// that.
func (s *Session) Expiry() (exp time.Time, ok bool) {
	if s == nil || s.Token == "" {
		return time.Time{}, false
	}
	tok, _, err := jwt.NewParser().ParseUnverified(s.Token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	date, err := tok.Claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// Expired reports whether the token's expiry has passed.
func (s *Session) Expired() bool {
	exp, ok := s.Expiry()
	return ok && !now().Before(exp)
}

// BearerToken returns the token to attach to requests, or "" for an absent
// or expired session. Nil-safe.
func (s *Session) BearerToken() string {
	if s == nil || s.Expired() {
		return ""
	}
	return s.Token
}

// DisplayName prefers the user's name and falls back to the email.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.User.Name != "" {
		return s.User.Name
	}
	return s.User.Email
}

// Static is a bare token, used for the TRUTHLENS_TOKEN override.
type Static string

func (t Static) BearerToken() string { return string(t) }

// Path returns ~/.truthlens/session.json.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".truthlens", "session.json")
}

// Load reads the session file. A missing file is (nil, nil): anonymous.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

// Save writes the session with owner-only permissions.
func Save(path string, s *Session) error {
	if s == nil {
		return Clear(path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Clear removes the session file. Removing a missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
