package ports

import (
	"context"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// RegisterInput carries the fields accepted at self-registration.
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      string
	ChurchCode string
	ChurchName string
}

// AuthService implements credential verification and the account-facing
// operations built on top of it.
type AuthService interface {
	// Login verifies credentials and, on success, issues a session. Unknown
	// email and wrong password are indistinguishable to the caller: both
	// return domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string, remember bool, meta domain.ClientMeta) (*domain.Session, *domain.User, error)
	// Logout invalidates the session identified by token.
	Logout(ctx context.Context, token string, user *domain.User, meta domain.ClientMeta) error
	// Register creates an account at the default access level.
	Register(ctx context.Context, in RegisterInput, meta domain.ClientMeta) (*domain.User, error)
	// ChangePassword re-verifies the current password, stores the new hash
	// and revokes every session of the user.
	ChangePassword(ctx context.Context, user *domain.User, current, next string, meta domain.ClientMeta) error
	// ForgotPassword issues a short-lived signed reset token for the email.
	// It succeeds silently for unknown emails so account existence is not
	// leaked.
	ForgotPassword(ctx context.Context, email string) (string, error)
	// ResetPassword consumes a reset token, stores the new hash and revokes
	// every session of the user.
	ResetPassword(ctx context.Context, token, next string, meta domain.ClientMeta) error
}

// SessionManager owns the bearer-session lifecycle.
type SessionManager interface {
	// Create issues a session with a fresh opaque token.
	Create(ctx context.Context, user *domain.User, remember bool, meta domain.ClientMeta) (*domain.Session, error)
	// Validate resolves a token to its owning user. Unknown, expired,
	// invalidated and owner-deactivated tokens all return
	// domain.ErrSessionInvalid; expiry additionally flips the stored session
	// inactive as a side effect.
	Validate(ctx context.Context, token string) (*domain.User, error)
	// Invalidate marks one session inactive and reports whether a matching
	// active session existed.
	Invalidate(ctx context.Context, token string) (bool, error)
	// InvalidateAll revokes every active session of the user.
	InvalidateAll(ctx context.Context, userID string) error
}
