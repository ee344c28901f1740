package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/regionalitapevi/admin-portal/internal/core/domain"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
)

// seedLevels is the fixed access-level hierarchy, rank 1 (most privileged)
// through 6 (least privileged).
var seedLevels = []domain.AccessLevel{
	{Name: domain.LevelMaster, Rank: 1, Description: "Full system access for general administrators"},
	{Name: domain.LevelAdmin, Rank: 2, Description: "Regional administrators with broad access"},
	{Name: domain.LevelCoordinator, Rank: 3, Description: "Music coordinators with access to specific features"},
	{Name: domain.LevelInstructor, Rank: 4, Description: "Instructors limited to their own classes"},
	{Name: domain.LevelMusician, Rank: 5, Description: "Musicians with basic system access"},
	{Name: domain.LevelCandidate, Rank: 6, Description: "Candidates with very limited access"},
}

// seedPermissions is the static permission catalog, organized module.action.
var seedPermissions = []domain.Permission{
	{Name: "dashboard.view", Module: "dashboard", Action: "view", Description: "View the main dashboard"},
	{Name: "dashboard.admin", Module: "dashboard", Action: "admin", Description: "Full access to the administrative dashboard"},

	{Name: "musicians.view", Module: "musicians", Action: "view", Description: "View the musician list"},
	{Name: "musicians.create", Module: "musicians", Action: "create", Description: "Register new musicians"},
	{Name: "musicians.edit", Module: "musicians", Action: "edit", Description: "Edit musician records"},
	{Name: "musicians.delete", Module: "musicians", Action: "delete", Description: "Delete musicians"},

	{Name: "organists.view", Module: "organists", Action: "view", Description: "View the organist list"},
	{Name: "organists.create", Module: "organists", Action: "create", Description: "Register new organists"},
	{Name: "organists.edit", Module: "organists", Action: "edit", Description: "Edit organist records"},
	{Name: "organists.delete", Module: "organists", Action: "delete", Description: "Delete organists"},

	{Name: "churches.view", Module: "churches", Action: "view", Description: "View the church list"},
	{Name: "churches.create", Module: "churches", Action: "create", Description: "Register new churches"},
	{Name: "churches.edit", Module: "churches", Action: "edit", Description: "Edit church records"},
	{Name: "churches.delete", Module: "churches", Action: "delete", Description: "Delete churches"},

	{Name: "reports.view", Module: "reports", Action: "view", Description: "View reports"},
	{Name: "reports.export", Module: "reports", Action: "export", Description: "Export reports"},

	{Name: "users.view", Module: "users", Action: "view", Description: "View the user list"},
	{Name: "users.create", Module: "users", Action: "create", Description: "Create new users"},
	{Name: "users.edit", Module: "users", Action: "edit", Description: "Edit users"},
	{Name: "users.delete", Module: "users", Action: "delete", Description: "Delete users"},

	{Name: "settings.view", Module: "settings", Action: "view", Description: "View settings"},
	{Name: "settings.edit", Module: "settings", Action: "edit", Description: "Edit settings"},
}

// AdminSeed configures the default administrator created at provisioning.
type AdminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Provisioner seeds the access-level hierarchy, the permission catalog, the
// per-level grants and the default administrator. Seeding is idempotent:
// every write is an upsert, so re-running changes nothing and never clears
// grants already present.
type Provisioner struct {
	store ports.ProvisionStore
	log   zerolog.Logger
}

func NewProvisioner(store ports.ProvisionStore, log zerolog.Logger) *Provisioner {
	return &Provisioner{store: store, log: log}
}

func (p *Provisioner) Run(ctx context.Context, admin AdminSeed) error {
	if err := p.seedLevels(ctx); err != nil {
		return err
	}
	if err := p.seedPermissions(ctx); err != nil {
		return err
	}
	if err := p.seedGrants(ctx); err != nil {
		return err
	}
	if err := p.seedAdmin(ctx, admin); err != nil {
		return err
	}
	p.log.Info().Msg("provisioning complete")
	return nil
}

func (p *Provisioner) seedLevels(ctx context.Context) error {
	for _, level := range seedLevels {
		if err := p.store.EnsureLevel(ctx, level); err != nil {
			return fmt.Errorf("ensure level %s: %w", level.Name, err)
		}
	}
	return nil
}

func (p *Provisioner) seedPermissions(ctx context.Context) error {
	for _, perm := range seedPermissions {
		if err := p.store.EnsurePermission(ctx, perm); err != nil {
			return fmt.Errorf("ensure permission %s: %w", perm.Name, err)
		}
	}
	return nil
}

func (p *Provisioner) seedGrants(ctx context.Context) error {
	for _, level := range seedLevels {
		for _, perm := range seedPermissions {
			if !grantedTo(level.Name, perm) {
				continue
			}
			if err := p.store.EnsureGrant(ctx, level.Name, perm.Name); err != nil {
				return fmt.Errorf("ensure grant %s -> %s: %w", level.Name, perm.Name, err)
			}
		}
	}
	return nil
}

// grantedTo encodes the seed grant rules: the topmost level holds the whole
// catalog and each lower level a module/action-filtered subset.
func grantedTo(levelName string, perm domain.Permission) bool {
	switch levelName {
	case domain.LevelMaster:
		return true
	case domain.LevelAdmin:
		return perm.Name != "settings.edit" && perm.Name != "users.delete"
	case domain.LevelCoordinator:
		return moduleIn(perm, "musicians", "organists", "reports", "dashboard") &&
			actionIn(perm, "view", "create", "edit")
	case domain.LevelInstructor:
		return moduleIn(perm, "musicians", "dashboard") && actionIn(perm, "view", "edit")
	case domain.LevelMusician:
		return perm.Name == "dashboard.view" || perm.Name == "musicians.view"
	case domain.LevelCandidate:
		return perm.Name == "dashboard.view"
	default:
		return false
	}
}

func moduleIn(perm domain.Permission, modules ...string) bool {
	for _, m := range modules {
		if perm.Module == m {
			return true
		}
	}
	return false
}

func actionIn(perm domain.Permission, actions ...string) bool {
	for _, a := range actions {
		if perm.Action == a {
			return true
		}
	}
	return false
}

func (p *Provisioner) seedAdmin(ctx context.Context, admin AdminSeed) error {
	if admin.Email == "" || admin.Password == "" {
		p.log.Info().Msg("no admin seed configured, skipping")
		return nil
	}

	hash, err := HashPassword(admin.Password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        admin.Email,
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		PasswordHash: hash,
		Level:        domain.AccessLevel{Name: domain.LevelMaster, Rank: 1},
		Active:       true,
		Verified:     true,
		Staff:        true,
		Superuser:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.store.EnsureUser(ctx, user); err != nil {
		return fmt.Errorf("ensure admin user: %w", err)
	}
	return nil
}
