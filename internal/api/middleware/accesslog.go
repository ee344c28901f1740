package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/regionalitapevi/admin-portal/internal/api/metrics"
	"github.com/regionalitapevi/admin-portal/internal/core/domain"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
)

// skippedPrefixes are request paths excluded from request auditing.
var skippedPrefixes = []string{"/static/", "/health", "/metrics", "/favicon"}

// AccessLog records one best-effort audit entry per authenticated request
// after the handler responds: the action is "<METHOD>_<STATUS>", the module
// derives from the path prefix. Anonymous and static requests are skipped.
// Timing goes to the request-duration histogram and the debug log; the audit
// row itself carries no duration.
func AccessLog(audit ports.AuditLogger, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Request().URL.Path
			for _, prefix := range skippedPrefixes {
				if strings.HasPrefix(path, prefix) {
					return err
				}
			}

			user := UserFrom(c)
			if user == nil {
				return err
			}

			status := c.Response().Status
			if err != nil {
				// The error handler has not run yet; report what it will.
				// Domain and infrastructure errors surface as 500 there.
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}

			duration := time.Since(start)
			module := ModuleFromPath(path)
			method := c.Request().Method
			metrics.RequestDuration.WithLabelValues(module, method).Observe(duration.Seconds())
			log.Debug().
				Str("module", module).
				Str("path", path).
				Int("status", status).
				Dur("duration", duration).
				Msg("request")

			errMsg := ""
			if status >= 400 {
				errMsg = fmt.Sprintf("HTTP %d", status)
			}
			userID := user.ID
			meta := ClientMeta(c)
			audit.Record(c.Request().Context(), domain.AccessLog{
				UserID:       &userID,
				Action:       fmt.Sprintf("%s_%d", method, status),
				Module:       module,
				IPAddress:    meta.IPAddress,
				UserAgent:    meta.UserAgent,
				Success:      status < 400,
				ErrorMessage: errMsg,
			})

			return err
		}
	}
}
