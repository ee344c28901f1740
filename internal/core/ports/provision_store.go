package ports

import (
	"context"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// ProvisionStore performs the administrative upserts used by provisioning.
// Implementations must be idempotent: re-running any Ensure call with the same
// arguments changes nothing and never clears state already present.
type ProvisionStore interface {
	EnsureLevel(ctx context.Context, level domain.AccessLevel) error
	EnsurePermission(ctx context.Context, perm domain.Permission) error
	// EnsureGrant inserts a granted=true row for (level name, permission
	// name) unless one already exists. Existing rows keep their flag.
	EnsureGrant(ctx context.Context, levelName, permissionName string) error
	// EnsureUser creates the user unless the email is already taken.
	EnsureUser(ctx context.Context, user *domain.User) error
}
