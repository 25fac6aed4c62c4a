package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSpaceNotFound    = errors.New("space not found")
	ErrAlreadyAssigned  = errors.New("user is already an admin of this space")
	ErrNotSpaceAdmin    = errors.New("user is not a space admin")
	ErrSettingsKeyEmpty = errors.New("settings key must not be empty")
)

// SpaceService covers the central-admin space management surface:
// creating spaces, (un)assigning space admins and editing settings.
type SpaceService struct {
	db *gorm.DB
}

func NewSpaceService(db *gorm.DB) *SpaceService {
	return &SpaceService{db: db}
}

// ListSpaces returns all spaces under the organizations administered by
// admin.
func (s *SpaceService) ListSpaces(admin *models.User) ([]models.Space, error) {
	var spaces []models.Space
	err := s.db.
		Joins("JOIN organization_central_admins oca ON oca.organization_id = spaces.org_id").
		Where("oca.user_id = ?", admin.ID).
		Order("spaces.name").
		Find(&spaces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	return spaces, nil
}

// CreateSpace creates a space with default settings under one of the
// admin's organizations.
func (s *SpaceService) CreateSpace(admin *models.User, orgSlug, name, description string) (*models.Space, error) {
	var org models.Organization
	err := s.db.
		Joins("JOIN organization_central_admins oca ON oca.organization_id = organizations.id").
		Where("oca.user_id = ? AND organizations.slug = ?", admin.ID, orgSlug).
		First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrgAdmin
		}
		return nil, fmt.Errorf("org lookup failed: %w", err)
	}

	slug, err := models.UniqueSlug(s.db, "spaces", name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate space slug: %w", err)
	}

	space := models.Space{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OrgID:       org.ID,
		Slug:        slug,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&space).Error; err != nil {
			return err
		}
		return tx.Create(&models.SpaceSettings{
			SpaceID:            space.ID,
			IssueReportingOpen: true,
			Extra:              datatypes.JSON([]byte("{}")),
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}
	return &space, nil
}

// AssignAdmin adds a space-admin user to the space's admin set. The
// assignment row's timestamp fixes its position in the resolver's
// fallback order.
func (s *SpaceService) AssignAdmin(admin *models.User, spaceSlug string, userID uuid.UUID) error {
	space, err := s.adminSpace(admin, spaceSlug)
	if err != nil {
		return err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}
	if user.UserType != models.UserTypeSpaceAdmin {
		return ErrNotSpaceAdmin
	}

	var count int64
	if err := s.db.Model(&models.SpaceAdminAssignment{}).
		Where("space_id = ? AND user_id = ?", space.ID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyAssigned
	}

	return s.db.Create(&models.SpaceAdminAssignment{SpaceID: space.ID, UserID: userID}).Error
}

// UnassignAdmin removes the assignment. Takes effect on the user's very
// next request: the gate re-checks assignments per request.
func (s *SpaceService) UnassignAdmin(admin *models.User, spaceSlug string, userID uuid.UUID) error {
	space, err := s.adminSpace(admin, spaceSlug)
	if err != nil {
		return err
	}
	return s.db.
		Where("space_id = ? AND user_id = ?", space.ID, userID).
		Delete(&models.SpaceAdminAssignment{}).Error
}

// SetSettingsKey writes one key into the space's settings extra blob.
func (s *SpaceService) SetSettingsKey(admin *models.User, spaceSlug, key string, value interface{}) error {
	if key == "" {
		return ErrSettingsKeyEmpty
	}
	space, err := s.adminSpace(admin, spaceSlug)
	if err != nil {
		return err
	}

	var settings models.SpaceSettings
	if err := s.db.Where("space_id = ?", space.ID).First(&settings).Error; err != nil {
		return fmt.Errorf("settings lookup failed: %w", err)
	}

	extra := map[string]interface{}{}
	if len(settings.Extra) > 0 {
		if err := json.Unmarshal(settings.Extra, &extra); err != nil {
			return fmt.Errorf("corrupt settings blob: %w", err)
		}
	}
	extra[key] = value
	blob, err := json.Marshal(extra)
	if err != nil {
		return err
	}

	return s.db.Model(&settings).Update("extra", datatypes.JSON(blob)).Error
}

// DeleteSettingsKey removes one key from the extra blob.
func (s *SpaceService) DeleteSettingsKey(admin *models.User, spaceSlug, key string) error {
	if key == "" {
		return ErrSettingsKeyEmpty
	}
	space, err := s.adminSpace(admin, spaceSlug)
	if err != nil {
		return err
	}

	var settings models.SpaceSettings
	if err := s.db.Where("space_id = ?", space.ID).First(&settings).Error; err != nil {
		return fmt.Errorf("settings lookup failed: %w", err)
	}

	extra := map[string]interface{}{}
	if len(settings.Extra) > 0 {
		if err := json.Unmarshal(settings.Extra, &extra); err != nil {
			return fmt.Errorf("corrupt settings blob: %w", err)
		}
	}
	delete(extra, key)
	blob, err := json.Marshal(extra)
	if err != nil {
		return err
	}

	return s.db.Model(&settings).Update("extra", datatypes.JSON(blob)).Error
}

func (s *SpaceService) adminSpace(admin *models.User, spaceSlug string) (*models.Space, error) {
	var space models.Space
	err := s.db.
		Joins("JOIN organization_central_admins oca ON oca.organization_id = spaces.org_id").
		Where("oca.user_id = ? AND spaces.slug = ?", admin.ID, spaceSlug).
		First(&space).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, fmt.Errorf("space lookup failed: %w", err)
	}
	return &space, nil
}
