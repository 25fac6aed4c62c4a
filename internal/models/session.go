package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side login record. The session id travels in
// the access token's sid claim and the refresh token is stored hashed,
// so revoking the row ends the session on the next request for both
// paths.
type Session struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	RefreshTokenHash string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	ExpiresAt        time.Time `gorm:"not null" json:"expires_at"`
	Revoked          bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt        time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
