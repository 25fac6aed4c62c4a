package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Space is an organizational sub-unit that scopes issues, assignments
// and settings.
type Space struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	OrgID       uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	Slug        string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Org         Organization   `gorm:"foreignKey:OrgID" json:"-"`
	SpaceAdmins []User         `gorm:"many2many:space_admin_assignments" json:"-"`
	Settings    *SpaceSettings `gorm:"foreignKey:SpaceID" json:"-"`
}

// SpaceAdminAssignment is the join row between spaces and their admins.
// CreatedAt gives the stable iteration order the space context resolver
// relies on when it picks a fallback active space.
type SpaceAdminAssignment struct {
	SpaceID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// SpaceSettings holds per-space feature toggles. Read-only for the
// request pipeline; central admins mutate it through the settings API.
type SpaceSettings struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SpaceID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"space_id"`
	IssueReportingOpen bool           `gorm:"not null;default:true" json:"issue_reporting_open"`
	FinanceEnabled     bool           `gorm:"not null;default:false" json:"finance_enabled"`
	Extra              datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
