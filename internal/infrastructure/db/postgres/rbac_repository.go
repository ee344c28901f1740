package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
)

// RBACRepository reads the role/permission graph. Checks always hit the
// database so grant changes take effect immediately.
type RBACRepository struct {
	pool *pgxpool.Pool
}

func NewRBACRepository(pool *pgxpool.Pool) *RBACRepository {
	return &RBACRepository{pool: pool}
}

func (r *RBACRepository) FindLevelByName(ctx context.Context, name string) (*domain.AccessLevel, error) {
	var l domain.AccessLevel
	err := r.pool.QueryRow(ctx, `
		select id, name, description, level_order, created_at, updated_at
		from access_levels where name = $1`, name,
	).Scan(&l.ID, &l.Name, &l.Description, &l.Rank, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLevelNotFound
		}
		return nil, fmt.Errorf("find access level: %w", err)
	}
	return &l, nil
}

func (r *RBACRepository) HasGrant(ctx context.Context, levelID, permissionName string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		select exists (
			select 1
			from access_level_permissions alp
			join permissions p on p.id = alp.permission_id
			where alp.access_level_id = $1 and p.name = $2 and alp.granted
		)`, levelID, permissionName,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("grant lookup: %w", err)
	}
	return ok, nil
}

func (r *RBACRepository) HasModuleGrant(ctx context.Context, levelID, module string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		select exists (
			select 1
			from access_level_permissions alp
			join permissions p on p.id = alp.permission_id
			where alp.access_level_id = $1 and p.module = $2 and alp.granted
		)`, levelID, module,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("module grant lookup: %w", err)
	}
	return ok, nil
}

func (r *RBACRepository) PermissionsForLevel(ctx context.Context, levelID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		select p.name
		from access_level_permissions alp
		join permissions p on p.id = alp.permission_id
		where alp.access_level_id = $1 and alp.granted
		order by p.module, p.action`, levelID,
	)
	if err != nil {
		return nil, fmt.Errorf("list level permissions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
