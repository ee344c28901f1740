package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
)

const (
	defaultSessionTTL  = 24 * time.Hour
	defaultRememberTTL = 30 * 24 * time.Hour

	// 32 random bytes = 256 bits of token entropy.
	tokenBytes = 32
)

// SessionManager issues, validates and revokes bearer sessions. It holds no
// in-process session state; every operation is a round trip to the store.
type SessionManager struct {
	sessions    ports.SessionRepository
	users       ports.UserRepository
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
	log         zerolog.Logger
}

func NewSessionManager(sessions ports.SessionRepository, users ports.UserRepository, ttl, rememberTTL time.Duration, log zerolog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if rememberTTL <= 0 {
		rememberTTL = defaultRememberTTL
	}
	return &SessionManager{
		sessions:    sessions,
		users:       users,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
		log:         log,
	}
}

// TTL returns the configured session lifetime for the remember flag, used by
// handlers to size the session cookie's max-age.
func (m *SessionManager) TTL(remember bool) time.Duration {
	if remember {
		return m.rememberTTL
	}
	return m.ttl
}

func (m *SessionManager) Create(ctx context.Context, user *domain.User, remember bool, meta domain.ClientMeta) (*domain.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := m.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(m.TTL(remember)),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Active:    true,
		CreatedAt: now,
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

func (m *SessionManager) Validate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrSessionInvalid
	}

	session, err := m.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	now := m.now().UTC()
	if !session.Usable(now) {
		if session.Active && session.Expired(now) {
			// Lazy expiry: flip the row inactive on first detection. A failed
			// flip does not make the session usable.
			if _, err := m.sessions.Deactivate(ctx, token); err != nil {
				m.log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to deactivate expired session")
			}
		}
		return nil, domain.ErrSessionInvalid
	}

	user, err := m.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if !user.Active {
		return nil, domain.ErrSessionInvalid
	}
	return user, nil
}

func (m *SessionManager) Invalidate(ctx context.Context, token string) (bool, error) {
	existed, err := m.sessions.Deactivate(ctx, token)
	if err != nil {
		return false, fmt.Errorf("deactivate session: %w", err)
	}
	return existed, nil
}

func (m *SessionManager) InvalidateAll(ctx context.Context, userID string) error {
	if err := m.sessions.DeactivateByUser(ctx, userID); err != nil {
		return fmt.Errorf("deactivate user sessions: %w", err)
	}
	return nil
}

// newToken returns a cryptographically random, URL-safe opaque token.
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
