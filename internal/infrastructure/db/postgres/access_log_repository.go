package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// AccessLogRepository appends immutable access log rows. There is no update
// or delete path.
type AccessLogRepository struct {
	pool *pgxpool.Pool
}

func NewAccessLogRepository(pool *pgxpool.Pool) *AccessLogRepository {
	return &AccessLogRepository{pool: pool}
}

func (r *AccessLogRepository) Append(ctx context.Context, entry *domain.AccessLog) error {
	_, err := r.pool.Exec(ctx, `
		insert into access_logs (user_id, action, module, resource_id, ip_address, user_agent, success, error_message, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		entry.UserID, entry.Action, entry.Module, entry.ResourceID,
		entry.IPAddress, entry.UserAgent, entry.Success, entry.ErrorMessage, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}
