package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrAccountInactive    = errors.New("account inactive")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// User models an authenticated actor in the system. Users are never
// hard-deleted; deactivation happens via the Active flag.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Phone        string      `json:"phone,omitempty"`
	PasswordHash string      `json:"-"`
	Level        AccessLevel `json:"access_level"`
	ChurchCode   string      `json:"church_code,omitempty"`
	ChurchName   string      `json:"church_name,omitempty"`
	Active       bool        `json:"active"`
	Verified     bool        `json:"verified"`
	Staff        bool        `json:"staff"`
	Superuser    bool        `json:"superuser"`
	LastLogin    *time.Time  `json:"last_login,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity is the minimal value authorization decisions operate on. It
// deliberately carries no pointer back to the full User so authorizers stay
// decoupled from any particular user representation.
type Identity struct {
	UserID    string
	Superuser bool
	LevelID   string
	Rank      int
}

// Identity projects the authorization-relevant fields of the user.
func (u *User) Identity() Identity {
	return Identity{
		UserID:    u.ID,
		Superuser: u.Superuser,
		LevelID:   u.Level.ID,
		Rank:      u.Level.Rank,
	}
}

// ClientMeta carries per-request client attribution recorded on sessions and
// access log entries.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}
