package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	AddressLineOne string    `gorm:"size:255" json:"address_line_one"`
	AddressLineTwo string    `gorm:"size:255" json:"address_line_two"`
	Slug           string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	CentralAdmins []User  `gorm:"many2many:organization_central_admins" json:"-"`
	Spaces        []Space `gorm:"foreignKey:OrgID" json:"-"`
}
