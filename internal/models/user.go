package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthMethod selects which credential path a user authenticates with.
type AuthMethod string

const (
	AuthMethodEmail AuthMethod = "email"
	AuthMethodPhone AuthMethod = "phone"
)

// UserType is the role carried by every account.
type UserType string

const (
	UserTypeCentralAdmin UserType = "central_admin"
	UserTypeSpaceAdmin   UserType = "space_admin"
	UserTypeMaintainer   UserType = "maintainer"
	UserTypeSupervisor   UserType = "supervisor"
	UserTypeReviewer     UserType = "reviewer"
	UserTypeGeneralUser  UserType = "general_user"
)

// User is the account model. Phone-authenticated users are always
// general users and carry no password; email-authenticated users need a
// usable password hash before they can log in.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        *string        `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Phone        *string        `gorm:"size:32;uniqueIndex" json:"phone,omitempty"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	AuthMethod   AuthMethod     `gorm:"size:10;not null;default:'email'" json:"auth_method"`
	UserType     UserType       `gorm:"size:20;not null;default:'general_user';index" json:"user_type"`
	FirstName    string         `gorm:"size:100" json:"first_name"`
	LastName     string         `gorm:"size:100" json:"last_name"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"-"`
}

// HasUsablePassword reports whether the account can pass email login.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) IsCentralAdmin() bool { return u.UserType == UserTypeCentralAdmin }
func (u *User) IsSpaceAdmin() bool   { return u.UserType == UserTypeSpaceAdmin }
func (u *User) IsMaintainer() bool   { return u.UserType == UserTypeMaintainer }
func (u *User) IsSupervisor() bool   { return u.UserType == UserTypeSupervisor }
func (u *User) IsReviewer() bool     { return u.UserType == UserTypeReviewer }
func (u *User) IsGeneralUser() bool  { return u.UserType == UserTypeGeneralUser }
