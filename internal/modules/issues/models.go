package issues

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusEscalated  Status = "escalated"
	StatusClosed     Status = "closed"
	StatusCancelled  Status = "cancelled"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Issue struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Status       Status     `gorm:"size:20;not null;default:'open';index" json:"status"`
	Priority     Priority   `gorm:"size:20;not null;default:'medium'" json:"priority"`
	OrgID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	SpaceID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"space_id"`
	ReporterID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	MaintainerID *uuid.UUID `gorm:"type:uuid;index" json:"maintainer_id,omitempty"`
	Slug         string     `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type IssueComment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IssueID   uuid.UUID `gorm:"type:uuid;not null;index" json:"issue_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Issue) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (c *IssueComment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
