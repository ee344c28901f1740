package domain

import (
	"errors"
	"time"
)

// ErrSessionInvalid covers every unusable-session case: unknown token, expired,
// explicitly invalidated, or owner deactivated. Callers get no distinction —
// an invalid session is indistinguishable from being logged out.
var ErrSessionInvalid = errors.New("session invalid")

// Session is a bearer login session identified by an opaque random token,
// independent of any framework-native session mechanism. A user may hold any
// number of concurrent sessions.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session's absolute expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Usable reports whether the session may still authenticate requests.
func (s *Session) Usable(now time.Time) bool {
	return s.Active && !s.Expired(now)
}
