package ports

import (
	"context"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// Authorizer answers permission questions for an identity. Unknown permission
// or level names fail closed (false, nil) — never an error. A returned error
// always means the datastore could not be consulted; callers must treat it as
// a denial with internal-error semantics, never as an allow.
type Authorizer interface {
	HasPermission(ctx context.Context, id domain.Identity, permission string) (bool, error)
	HasRoleAtLeast(ctx context.Context, id domain.Identity, levelName string) (bool, error)
	HasModuleAccess(ctx context.Context, id domain.Identity, module string) (bool, error)
	ListPermissions(ctx context.Context, id domain.Identity) ([]string, error)
}
