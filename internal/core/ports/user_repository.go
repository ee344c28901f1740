package ports

import (
	"context"
	"time"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// UserRepository defines persistence for user accounts. Lookups expand the
// user's access level in the same round trip (single-level FK expansion).
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}
