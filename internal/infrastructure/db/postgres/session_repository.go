package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// SessionRepository persists bearer login sessions.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	_, err := r.pool.Exec(ctx, `
		insert into user_sessions (id, user_id, session_token, expires_at, ip_address, user_agent, is_active, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)`,
		session.ID, session.UserID, session.Token, session.ExpiresAt,
		session.IPAddress, session.UserAgent, session.Active, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.pool.QueryRow(ctx, `
		select id, user_id, session_token, expires_at, ip_address, user_agent, is_active, created_at
		from user_sessions where session_token = $1`, token,
	).Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.IPAddress, &s.UserAgent, &s.Active, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionInvalid
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) Deactivate(ctx context.Context, token string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`update user_sessions set is_active = false where session_token = $1 and is_active`,
		token,
	)
	if err != nil {
		return false, fmt.Errorf("deactivate session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeactivateByUser revokes every active session of the user in one statement,
// so no session remains usable once the call returns.
func (r *SessionRepository) DeactivateByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`update user_sessions set is_active = false where user_id = $1 and is_active`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("deactivate user sessions: %w", err)
	}
	return nil
}
