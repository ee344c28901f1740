package ports

import (
	"context"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// SessionRepository defines persistence for bearer login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	// Deactivate marks a single session inactive and reports whether a
	// matching active session existed.
	Deactivate(ctx context.Context, token string) (bool, error)
	// DeactivateByUser marks every active session of the user inactive in a
	// single atomic statement.
	DeactivateByUser(ctx context.Context, userID string) error
}
