package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/regionalitapevi/admin-portal/internal/api/metrics"
	"github.com/regionalitapevi/admin-portal/internal/core/domain"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
)

// routePermissions maps protected path prefixes to the permission they
// require. Matching picks the longest prefix, so /musicians/create resolves
// to musicians.create rather than musicians.view.
var routePermissions = map[string]string{
	"/dashboard/admin/":  "dashboard.admin",
	"/musicians/":        "musicians.view",
	"/musicians/create/": "musicians.create",
	"/musicians/edit/":   "musicians.edit",
	"/musicians/delete/": "musicians.delete",
	"/organists/":        "organists.view",
	"/organists/create/": "organists.create",
	"/organists/edit/":   "organists.edit",
	"/organists/delete/": "organists.delete",
	"/churches/":         "churches.view",
	"/churches/create/":  "churches.create",
	"/churches/edit/":    "churches.edit",
	"/churches/delete/":  "churches.delete",
	"/reports/":          "reports.view",
	"/users/":            "users.view",
	"/users/create/":     "users.create",
	"/users/edit/":       "users.edit",
	"/users/delete/":     "users.delete",
	"/settings/":         "settings.view",
	"/settings/edit/":    "settings.edit",
}

// requiredPermission returns the permission guarding the path, if any,
// using longest-prefix matching against the route table. The path is
// normalized to a trailing slash first so /settings and /settings/ resolve
// to the same permission.
func requiredPermission(path string) (string, bool) {
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	best := ""
	perm := ""
	for prefix, p := range routePermissions {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(best) {
			best = prefix
			perm = p
		}
	}
	return perm, best != ""
}

// Authorize enforces the route→permission table against the authenticated
// user. A typo in the table fails closed (unknown permission names are never
// granted to non-superusers). Each denial writes exactly one audit entry.
func Authorize(authz ports.Authorizer, audit ports.AuditLogger, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			permission, guarded := requiredPermission(path)
			if !guarded {
				return next(c)
			}

			user := UserFrom(c)
			if user == nil {
				// The authentication gate runs first; reaching here
				// anonymously means the route is public by configuration.
				return next(c)
			}

			ok, err := authz.HasPermission(c.Request().Context(), user.Identity(), permission)
			if err != nil {
				// Datastore failure: internal error, never an allow.
				return err
			}
			if ok {
				return next(c)
			}

			log.Warn().
				Str("email", user.Email).
				Str("path", path).
				Str("permission", permission).
				Msg("permission denied")
			metrics.AccessDenialsTotal.WithLabelValues("forbidden").Inc()

			meta := ClientMeta(c)
			userID := user.ID
			audit.Record(c.Request().Context(), domain.AccessLog{
				UserID:       &userID,
				Action:       domain.ActionPermissionDenied,
				Module:       ModuleFromPath(path),
				IPAddress:    meta.IPAddress,
				UserAgent:    meta.UserAgent,
				Success:      false,
				ErrorMessage: "missing permission " + permission,
			})

			if WantsJSON(c) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient permission"})
			}
			return c.Redirect(http.StatusFound, "/dashboard?error=permission_denied")
		}
	}
}
