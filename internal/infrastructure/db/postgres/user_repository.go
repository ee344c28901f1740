package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

const uniqueViolation = "23505"

// UserRepository persists user accounts. Every lookup expands the user's
// access level in the same query.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	u.id, u.email, u.first_name, u.last_name, u.phone, u.password_hash,
	u.church_code, u.church_name,
	u.is_active, u.is_verified, u.is_staff, u.is_superuser,
	u.last_login, u.created_at, u.updated_at,
	l.id, l.name, l.description, l.level_order, l.created_at, l.updated_at`

const userSelect = `select` + userColumns + `
	from users u
	join access_levels l on l.id = u.access_level_id`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.PasswordHash,
		&u.ChurchCode, &u.ChurchName,
		&u.Active, &u.Verified, &u.Staff, &u.Superuser,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
		&u.Level.ID, &u.Level.Name, &u.Level.Description, &u.Level.Rank,
		&u.Level.CreatedAt, &u.Level.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` where u.email = $1`, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` where u.id = $1`, id))
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `
		insert into users (
			id, email, first_name, last_name, phone, password_hash,
			access_level_id, church_code, church_name,
			is_active, is_verified, is_staff, is_superuser,
			created_at, updated_at
		) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		user.ID, user.Email, user.FirstName, user.LastName, user.Phone, user.PasswordHash,
		user.Level.ID, user.ChurchCode, user.ChurchName,
		user.Active, user.Verified, user.Staff, user.Superuser,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return r.FindByID(ctx, user.ID)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`update users set password_hash = $2, updated_at = now() where id = $1`,
		userID, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`update users set last_login = $2 where id = $1`,
		userID, at,
	)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
