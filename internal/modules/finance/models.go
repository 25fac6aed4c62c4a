package finance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type Frequency string

const (
	FreqDaily     Frequency = "daily"
	FreqWeekly    Frequency = "weekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqYearly    Frequency = "yearly"
)

type TransactionCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	Slug      string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction amounts are stored in minor currency units to avoid float
// rounding.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string          `gorm:"size:255;not null" json:"title"`
	Description   string          `gorm:"type:text" json:"description"`
	AmountMinor   int64           `gorm:"not null" json:"amount_minor"`
	Currency      string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Type          TransactionType `gorm:"size:20;not null;default:'expense';index" json:"type"`
	PaymentMethod string          `gorm:"size:30" json:"payment_method,omitempty"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	OrgID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"org_id"`
	SpaceID       *uuid.UUID      `gorm:"type:uuid;index" json:"space_id,omitempty"`
	CreatedByID   *uuid.UUID      `gorm:"type:uuid" json:"created_by_id,omitempty"`
	OccurredAt    time.Time       `gorm:"not null;index" json:"occurred_at"`
	IsRecurring   bool            `gorm:"not null;default:false" json:"is_recurring"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Slug          string          `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RecurringTransaction is a template that materializes into
// transactions when due.
type RecurringTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	AmountMinor int64           `gorm:"not null" json:"amount_minor"`
	Currency    string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Type        TransactionType `gorm:"size:20;not null;default:'expense'" json:"type"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	OrgID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"org_id"`
	SpaceID     *uuid.UUID      `gorm:"type:uuid;index" json:"space_id,omitempty"`
	CreatedByID *uuid.UUID      `gorm:"type:uuid" json:"created_by_id,omitempty"`
	Frequency   Frequency       `gorm:"size:20;not null" json:"frequency"`
	StartDate   time.Time       `gorm:"not null" json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	NextDueDate time.Time       `gorm:"not null;index" json:"next_due_date"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	AutoCreate  bool            `gorm:"not null;default:true" json:"auto_create"`
	Slug        string          `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (t *TransactionCategory) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (r *RecurringTransaction) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsDue reports whether the template should materialize now.
func (r *RecurringTransaction) IsDue(now time.Time) bool {
	return !r.NextDueDate.After(now)
}

// NextDue advances the due date by one period. Month-based frequencies
// clamp to the last day of shorter months (Jan 31 -> Feb 28).
func (r *RecurringTransaction) NextDue() time.Time {
	d := r.NextDueDate
	switch r.Frequency {
	case FreqDaily:
		return d.AddDate(0, 0, 1)
	case FreqWeekly:
		return d.AddDate(0, 0, 7)
	case FreqMonthly:
		return addMonthsClamped(d, 1)
	case FreqQuarterly:
		return addMonthsClamped(d, 3)
	case FreqYearly:
		return addMonthsClamped(d, 12)
	}
	return d
}

// addMonthsClamped adds months without the normalization overflow of
// time.AddDate (Jan 31 + 1 month must be Feb 28, not Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	m = (m-1)%12 + 1

	lastDay := time.Date(year, time.Month(m)+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	h, min, sec := t.Clock()
	return time.Date(year, time.Month(m), day, h, min, sec, t.Nanosecond(), t.Location())
}
