package services

import (
	"errors"
	"fmt"

	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrPhoneTaken   = errors.New("phone number already registered")
	ErrOrgNotFound  = errors.New("organization not found")
	ErrNotOrgAdmin  = errors.New("not a central admin of this organization")
	ErrBadUserInput = errors.New("invalid user data")
)

// PeopleService covers the central-admin user management surface:
// listing people across the admin's organizations and creating accounts
// with the right credential shape for their role.
type PeopleService struct {
	db *gorm.DB
}

func NewPeopleService(db *gorm.DB) *PeopleService {
	return &PeopleService{db: db}
}

type CreatePersonInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	UserType  models.UserType
	OrgSlug   string
}

// ListPeople returns the users whose profile belongs to one of the
// organizations administered by admin, ordered by name.
func (s *PeopleService) ListPeople(admin *models.User) ([]models.User, error) {
	var users []models.User
	err := s.db.
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Joins("JOIN organization_central_admins oca ON oca.organization_id = profiles.org_id").
		Where("oca.user_id = ?", admin.ID).
		Order("users.first_name, users.last_name").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return users, nil
}

// CreatePerson provisions an account in one of the admin's orgs. General
// users get a phone credential and no password; every other role gets an
// email credential with an unusable password until they complete a
// password reset.
func (s *PeopleService) CreatePerson(admin *models.User, in CreatePersonInput) (*models.User, error) {
	org, err := s.adminOrg(admin, in.OrgSlug)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:        uuid.New(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		UserType:  in.UserType,
		IsActive:  true,
	}

	if in.UserType == models.UserTypeGeneralUser {
		if in.Phone == "" {
			return nil, ErrBadUserInput
		}
		phone := in.Phone
		user.Phone = &phone
		user.AuthMethod = models.AuthMethodPhone
	} else {
		if in.Email == "" {
			return nil, ErrBadUserInput
		}
		email := in.Email
		user.Email = &email
		user.AuthMethod = models.AuthMethodEmail
		// PasswordHash stays empty: unusable until reset.
	}

	if err := s.checkTaken(&user); err != nil {
		return nil, err
	}

	slug, err := models.UniqueSlug(s.db, "profiles", user.FullName())
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile slug: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID: user.ID,
			OrgID:  &org.ID,
			Slug:   slug,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// SetPassword hashes and stores a new password for an email account.
func (s *PeopleService) SetPassword(userID uuid.UUID, password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	result := s.db.Model(&models.User{}).
		Where("id = ? AND auth_method = ?", userID, models.AuthMethodEmail).
		Update("password_hash", string(hash))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PeopleService) adminOrg(admin *models.User, orgSlug string) (*models.Organization, error) {
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
	return &org, nil
}

func (s *PeopleService) checkTaken(user *models.User) error {
	if user.Email != nil {
		var count int64
		if err := s.db.Model(&models.User{}).Where("email = ?", *user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
	}
	if user.Phone != nil {
		var count int64
		if err := s.db.Model(&models.User{}).Where("phone = ?", *user.Phone).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrPhoneTaken
		}
	}
	return nil
}
