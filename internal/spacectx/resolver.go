package spacectx

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolver derives the per-request space context from the assignment
// relations. It runs once per authenticated request.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve computes the space context for user. spaceFilter is the
// optional ?space_filter= query value, honored for central admins only.
//
// For space admins the persisted active space is repaired when it is
// unset or no longer among the administered spaces; the write is a plain
// read-then-write and a concurrent reassignment can race it
// (last-write-wins, accepted).
func (r *Resolver) Resolve(user *models.User, spaceFilter string) (Context, error) {
	switch user.UserType {
	case models.UserTypeSpaceAdmin:
		return r.resolveSpaceAdmin(user)
	case models.UserTypeCentralAdmin:
		return r.resolveCentralAdmin(user, spaceFilter), nil
	default:
		return Context{}, nil
	}
}

func (r *Resolver) resolveSpaceAdmin(user *models.User) (Context, error) {
	spaces, err := r.AdministeredSpaces(user.ID)
	if err != nil {
		return Context{}, fmt.Errorf("failed to list administered spaces: %w", err)
	}

	ctx := Context{Administered: spaces}
	if len(spaces) == 0 {
		// No assignments: leave the selection empty, the gate
		// middleware takes it from here.
		return ctx, nil
	}

	var profile models.Profile
	if err := r.db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		return Context{}, fmt.Errorf("failed to load profile: %w", err)
	}

	selected := pickActive(spaces, profile.CurrentActiveSpaceID)
	if profile.CurrentActiveSpaceID == nil || *profile.CurrentActiveSpaceID != selected.ID {
		if err := r.db.Model(&models.Profile{}).
			Where("user_id = ?", user.ID).
			Update("current_active_space_id", selected.ID).Error; err != nil {
			return Context{}, fmt.Errorf("failed to persist active space: %w", err)
		}
		slog.Info("active space reassigned", "user_id", user.ID.String(), "space_id", selected.ID.String())
	}

	ctx.Selected = selected
	ctx.Settings = r.settingsFor(selected.ID)
	return ctx, nil
}

// resolveCentralAdmin derives a request-scoped selection from the space
// filter. Nothing is persisted; an unknown or unauthorized slug yields
// an empty selection rather than an error.
func (r *Resolver) resolveCentralAdmin(user *models.User, spaceFilter string) Context {
	if spaceFilter == "" || spaceFilter == "no_space" {
		return Context{}
	}

	var space models.Space
	err := r.db.
		Joins("JOIN organization_central_admins oca ON oca.organization_id = spaces.org_id").
		Where("oca.user_id = ? AND spaces.slug = ?", user.ID, spaceFilter).
		First(&space).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("space filter lookup failed", "error", err, "user_id", user.ID.String())
		}
		return Context{}
	}

	return Context{
		Selected: &space,
		Settings: r.settingsFor(space.ID),
	}
}

// AdministeredSpaces lists the spaces assigned to a space admin, ordered
// by assignment creation then space id for a deterministic first pick.
func (r *Resolver) AdministeredSpaces(userID uuid.UUID) ([]models.Space, error) {
	var spaces []models.Space
	err := r.db.
		Joins("JOIN space_admin_assignments saa ON saa.space_id = spaces.id").
		Where("saa.user_id = ?", userID).
		Order("saa.created_at, spaces.id").
		Find(&spaces).Error
	return spaces, err
}

// HasAssignments runs the per-request existence check behind the
// space-admin gate. Not cached: assignment changes take effect on the
// next request.
func (r *Resolver) HasAssignments(userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.SpaceAdminAssignment{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *Resolver) settingsFor(spaceID uuid.UUID) *models.SpaceSettings {
	var settings models.SpaceSettings
	if err := r.db.Where("space_id = ?", spaceID).First(&settings).Error; err != nil {
		return nil
	}
	return &settings
}

func pickActive(spaces []models.Space, current *uuid.UUID) *models.Space {
	if current != nil {
		for i := range spaces {
			if spaces[i].ID == *current {
				return &spaces[i]
			}
		}
	}
	return &spaces[0]
}
