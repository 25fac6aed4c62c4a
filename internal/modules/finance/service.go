package finance

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	coremodels "github.com/reporthub-io/reporthub/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBadAmount    = errors.New("amount must be positive")
	ErrBadFrequency = errors.New("unknown recurrence frequency")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type TransactionInput struct {
	Title         string
	Description   string
	AmountMinor   int64
	Currency      string
	Type          TransactionType
	PaymentMethod string
	SpaceID       *uuid.UUID
	OccurredAt    time.Time
	Notes         string
}

func (s *Service) CreateTransaction(actor *coremodels.User, orgID uuid.UUID, in TransactionInput) (*Transaction, error) {
	if in.AmountMinor <= 0 {
		return nil, ErrBadAmount
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.Type == "" {
		in.Type = TypeExpense
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now()
	}

	slug, err := coremodels.UniqueSlug(s.db, "transactions", in.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to generate transaction slug: %w", err)
	}

	txn := Transaction{
		ID:            uuid.New(),
		Title:         in.Title,
		Description:   in.Description,
		AmountMinor:   in.AmountMinor,
		Currency:      in.Currency,
		Type:          in.Type,
		PaymentMethod: in.PaymentMethod,
		OrgID:         orgID,
		SpaceID:       in.SpaceID,
		CreatedByID:   &actor.ID,
		OccurredAt:    in.OccurredAt,
		Notes:         in.Notes,
		Slug:          slug,
	}
	if err := s.db.Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &txn, nil
}

type RecurringInput struct {
	TransactionInput
	Frequency Frequency
	StartDate time.Time
	EndDate   *time.Time
}

func (s *Service) CreateRecurring(actor *coremodels.User, orgID uuid.UUID, in RecurringInput) (*RecurringTransaction, error) {
	if in.AmountMinor <= 0 {
		return nil, ErrBadAmount
	}
	switch in.Frequency {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqQuarterly, FreqYearly:
	default:
		return nil, ErrBadFrequency
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.Type == "" {
		in.Type = TypeExpense
	}
	if in.StartDate.IsZero() {
		in.StartDate = time.Now()
	}

	slug, err := coremodels.UniqueSlug(s.db, "recurring_transactions", in.Title+"-recurring")
	if err != nil {
		return nil, fmt.Errorf("failed to generate recurring slug: %w", err)
	}

	rec := RecurringTransaction{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		AmountMinor: in.AmountMinor,
		Currency:    in.Currency,
		Type:        in.Type,
		OrgID:       orgID,
		SpaceID:     in.SpaceID,
		CreatedByID: &actor.ID,
		Frequency:   in.Frequency,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		NextDueDate: in.StartDate,
		IsActive:    true,
		AutoCreate:  true,
		Slug:        slug,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create recurring transaction: %w", err)
	}
	return &rec, nil
}

// ListForOrg returns an org's transactions newest first, optionally
// scoped to one space.
func (s *Service) ListForOrg(orgID uuid.UUID, spaceID *uuid.UUID) ([]Transaction, error) {
	q := s.db.Where("org_id = ?", orgID)
	if spaceID != nil {
		q = q.Where("space_id = ?", *spaceID)
	}
	var out []Transaction
	if err := q.Order("occurred_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return out, nil
}

type Summary struct {
	IncomeMinor  int64 `json:"income_minor"`
	ExpenseMinor int64 `json:"expense_minor"`
	NetMinor     int64 `json:"net_minor"`
}

func (s *Service) Summarize(orgID uuid.UUID, spaceID *uuid.UUID) (Summary, error) {
	var sum Summary
	base := func() *gorm.DB {
		q := s.db.Model(&Transaction{}).Where("org_id = ?", orgID)
		if spaceID != nil {
			q = q.Where("space_id = ?", *spaceID)
		}
		return q
	}

	var income, expense int64
	row := base().Where("type = ?", TypeIncome).Select("COALESCE(SUM(amount_minor), 0)").Row()
	if err := row.Scan(&income); err != nil {
		return sum, fmt.Errorf("income sum failed: %w", err)
	}
	row = base().Where("type = ?", TypeExpense).Select("COALESCE(SUM(amount_minor), 0)").Row()
	if err := row.Scan(&expense); err != nil {
		return sum, fmt.Errorf("expense sum failed: %w", err)
	}

	sum.IncomeMinor = income
	sum.ExpenseMinor = expense
	sum.NetMinor = income - expense
	return sum, nil
}

// ProcessDue materializes every due, active, auto-creating recurring
// template into a transaction and advances its due date. Templates past
// their end date are deactivated instead. Returns the number of
// transactions created.
func (s *Service) ProcessDue(now time.Time) (int, error) {
	var due []RecurringTransaction
	err := s.db.
		Where("is_active = ? AND auto_create = ? AND next_due_date <= ?", true, true, now).
		Order("next_due_date").
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list due templates: %w", err)
	}

	created := 0
	for i := range due {
		rec := &due[i]

		if rec.EndDate != nil && rec.NextDueDate.After(*rec.EndDate) {
			if err := s.db.Model(rec).Update("is_active", false).Error; err != nil {
				slog.Error("failed to deactivate recurring transaction", "error", err, "slug", rec.Slug)
			}
			continue
		}

		slug, err := coremodels.UniqueSlug(s.db, "transactions", rec.Title)
		if err != nil {
			slog.Error("failed to generate slug for recurring transaction", "error", err, "slug", rec.Slug)
			continue
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			txn := Transaction{
				ID:          uuid.New(),
				Title:       rec.Title,
				Description: rec.Description,
				AmountMinor: rec.AmountMinor,
				Currency:    rec.Currency,
				Type:        rec.Type,
				CategoryID:  rec.CategoryID,
				OrgID:       rec.OrgID,
				SpaceID:     rec.SpaceID,
				CreatedByID: rec.CreatedByID,
				OccurredAt:  now,
				IsRecurring: true,
				Notes:       "Auto-generated from recurring transaction: " + rec.Title,
				Slug:        slug,
			}
			if err := tx.Create(&txn).Error; err != nil {
				return err
			}
			return tx.Model(rec).Update("next_due_date", rec.NextDue()).Error
		})
		if err != nil {
			slog.Error("failed to materialize recurring transaction", "error", err, "slug", rec.Slug)
			continue
		}
		created++
	}
	return created, nil
}
