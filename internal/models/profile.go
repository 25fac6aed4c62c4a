package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the 1:1 companion record for a user. For space admins it
// remembers the space that was last in context; the space context
// resolver repairs it when the assignment goes stale.
type Profile struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	OrgID                *uuid.UUID `gorm:"type:uuid;index" json:"org_id,omitempty"`
	Slug                 string     `gorm:"size:255;uniqueIndex" json:"slug"`
	CurrentActiveSpaceID *uuid.UUID `gorm:"type:uuid" json:"current_active_space_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	CurrentActiveSpace *Space `gorm:"foreignKey:CurrentActiveSpaceID" json:"-"`
}
