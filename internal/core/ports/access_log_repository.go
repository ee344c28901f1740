package ports

import (
	"context"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// AccessLogRepository appends immutable access log entries.
type AccessLogRepository interface {
	Append(ctx context.Context, entry *domain.AccessLog) error
}
