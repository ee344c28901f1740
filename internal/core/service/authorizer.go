package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
)

// Authorizer evaluates permission questions against the live role/permission
// graph. Decisions are never cached: a grant changed mid-session takes effect
// on the next check.
type Authorizer struct {
	rbac ports.RBACRepository
}

func NewAuthorizer(rbac ports.RBACRepository) *Authorizer {
	return &Authorizer{rbac: rbac}
}

// HasPermission reports whether the identity holds the named permission.
// Superusers hold every permission, including names absent from the catalog.
// For everyone else an unknown name fails closed.
func (a *Authorizer) HasPermission(ctx context.Context, id domain.Identity, permission string) (bool, error) {
	if id.Superuser {
		return true, nil
	}
	ok, err := a.rbac.HasGrant(ctx, id.LevelID, permission)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("permission check: %w", err)
	}
	return ok, nil
}

// HasRoleAtLeast reports whether the identity's level is equally or more
// privileged than the named level (lower rank = more privilege). Unknown
// level names fail closed.
func (a *Authorizer) HasRoleAtLeast(ctx context.Context, id domain.Identity, levelName string) (bool, error) {
	if id.Superuser {
		return true, nil
	}
	target, err := a.rbac.FindLevelByName(ctx, levelName)
	if err != nil {
		if errors.Is(err, domain.ErrLevelNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("resolve level: %w", err)
	}
	return id.Rank <= target.Rank, nil
}

// HasModuleAccess reports whether any granted permission exists for the
// identity's level within the module.
func (a *Authorizer) HasModuleAccess(ctx context.Context, id domain.Identity, module string) (bool, error) {
	if id.Superuser {
		return true, nil
	}
	ok, err := a.rbac.HasModuleGrant(ctx, id.LevelID, module)
	if err != nil {
		return false, fmt.Errorf("module access check: %w", err)
	}
	return ok, nil
}

// ListPermissions returns every permission name granted to the identity's
// level. An unrecognized level yields an empty set, never an error.
func (a *Authorizer) ListPermissions(ctx context.Context, id domain.Identity) ([]string, error) {
	perms, err := a.rbac.PermissionsForLevel(ctx, id.LevelID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}
