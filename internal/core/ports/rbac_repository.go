package ports

import (
	"context"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// RBACRepository reads the role/permission graph. All checks hit the
// datastore live; grants are never cached across requests.
type RBACRepository interface {
	FindLevelByName(ctx context.Context, name string) (*domain.AccessLevel, error)
	// HasGrant reports whether the level holds a granted=true row for the
	// permission name. Unknown permission names report false, not an error.
	HasGrant(ctx context.Context, levelID, permissionName string) (bool, error)
	// HasModuleGrant reports whether any granted permission exists for the
	// level within the module.
	HasModuleGrant(ctx context.Context, levelID, module string) (bool, error)
	// PermissionsForLevel returns the names of every granted permission.
	PermissionsForLevel(ctx context.Context, levelID string) ([]string, error)
}
