package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

const (
	// SessionCookieName is the cookie carrying the opaque session token.
	SessionCookieName = "session_token"

	userContextKey = "auth_user"
)

// SetUser stores the authenticated user on the request context.
func SetUser(c echo.Context, user *domain.User) {
	c.Set(userContextKey, user)
}

// UserFrom returns the authenticated user resolved by the Authenticate
// middleware, or nil for anonymous requests.
func UserFrom(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}

// ClientMeta extracts client attribution from the request.
func ClientMeta(c echo.Context) domain.ClientMeta {
	return domain.ClientMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// WantsJSON reports whether the client is a machine client expecting a
// structured error body rather than a browser redirect.
func WantsJSON(c echo.Context) bool {
	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return true
	}
	// A bearer credential implies an API client regardless of Accept.
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
}

// BearerToken extracts the session token from the cookie or, failing that,
// the Authorization header. Returns "" when neither is present.
func BearerToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ModuleFromPath derives the business module from the URL path prefix,
// mirroring the module component of permission names.
func ModuleFromPath(path string) string {
	for _, module := range []string{
		"dashboard", "musicians", "organists", "churches", "reports", "users", "settings",
	} {
		if strings.HasPrefix(path, "/"+module) {
			return module
		}
	}
	return "general"
}
