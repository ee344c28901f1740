package ports

import (
	"context"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// AuditLogger records access log entries at explicit decision points.
// Recording is best-effort: failures are logged internally and must never
// block or fail the request that triggered them, so Record returns nothing.
type AuditLogger interface {
	Record(ctx context.Context, entry domain.AccessLog)
}
