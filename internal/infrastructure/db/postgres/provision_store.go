package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// ProvisionStore performs the idempotent administrative writes used at
// provisioning time. It is meant to run on the service-tier pool; the
// request path never touches it.
type ProvisionStore struct {
	pool *pgxpool.Pool
}

func NewProvisionStore(pool *pgxpool.Pool) *ProvisionStore {
	return &ProvisionStore{pool: pool}
}

func (s *ProvisionStore) EnsureLevel(ctx context.Context, level domain.AccessLevel) error {
	_, err := s.pool.Exec(ctx, `
		insert into access_levels (id, name, description, level_order)
		values ($1,$2,$3,$4)
		on conflict (name) do nothing`,
		uuid.NewString(), level.Name, level.Description, level.Rank,
	)
	if err != nil {
		return fmt.Errorf("ensure level: %w", err)
	}
	return nil
}

func (s *ProvisionStore) EnsurePermission(ctx context.Context, perm domain.Permission) error {
	_, err := s.pool.Exec(ctx, `
		insert into permissions (id, name, module, action, description)
		values ($1,$2,$3,$4,$5)
		on conflict (name) do nothing`,
		uuid.NewString(), perm.Name, perm.Module, perm.Action, perm.Description,
	)
	if err != nil {
		return fmt.Errorf("ensure permission: %w", err)
	}
	return nil
}

// EnsureGrant inserts a granted=true row unless the (level, permission) pair
// already exists. Existing rows keep their flag, so re-provisioning never
// resurrects a grant an operator has revoked.
func (s *ProvisionStore) EnsureGrant(ctx context.Context, levelName, permissionName string) error {
	_, err := s.pool.Exec(ctx, `
		insert into access_level_permissions (access_level_id, permission_id, granted)
		select l.id, p.id, true
		from access_levels l, permissions p
		where l.name = $1 and p.name = $2
		on conflict (access_level_id, permission_id) do nothing`,
		levelName, permissionName,
	)
	if err != nil {
		return fmt.Errorf("ensure grant: %w", err)
	}
	return nil
}

func (s *ProvisionStore) EnsureUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		insert into users (
			id, email, first_name, last_name, phone, password_hash,
			access_level_id, is_active, is_verified, is_staff, is_superuser,
			created_at, updated_at
		)
		select $1, $2, $3, $4, $5, $6, l.id, $8, $9, $10, $11, $12, $13
		from access_levels l where l.name = $7
		on conflict (email) do nothing`,
		user.ID, user.Email, user.FirstName, user.LastName, user.Phone, user.PasswordHash,
		user.Level.Name, user.Active, user.Verified, user.Staff, user.Superuser,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}
