package finance

import (
	"strings"
	"testing"
	"time"

	"github.com/reporthub-io/reporthub/internal/database"
	coremodels "github.com/reporthub-io/reporthub/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateCoreOn(db))
	require.NoError(t, db.AutoMigrate(&TransactionCategory{}, &Transaction{}, &RecurringTransaction{}))
	return db
}

func newFinanceFixture(t *testing.T) (*Service, *coremodels.User, uuid.UUID) {
	t.Helper()
	db := newTestDB(t)

	org := &coremodels.Organization{Name: "Acme", Slug: "acme"}
	require.NoError(t, db.Create(org).Error)

	email := "central@example.com"
	admin := &coremodels.User{
		Email:      &email,
		AuthMethod: coremodels.AuthMethodEmail,
		UserType:   coremodels.UserTypeCentralAdmin,
		IsActive:   true,
	}
	require.NoError(t, db.Create(admin).Error)

	return NewService(db), admin, org.ID
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueClampsMonthEnds(t *testing.T) {
	cases := []struct {
		freq Frequency
		from time.Time
		want time.Time
	}{
		{FreqMonthly, date(2025, time.January, 31), date(2025, time.February, 28)},
		{FreqMonthly, date(2024, time.January, 31), date(2024, time.February, 29)},
		{FreqMonthly, date(2025, time.March, 31), date(2025, time.April, 30)},
		{FreqMonthly, date(2025, time.December, 15), date(2026, time.January, 15)},
		{FreqQuarterly, date(2025, time.November, 30), date(2026, time.February, 28)},
		{FreqYearly, date(2024, time.February, 29), date(2025, time.February, 28)},
		{FreqDaily, date(2025, time.June, 30), date(2025, time.July, 1)},
		{FreqWeekly, date(2025, time.June, 30), date(2025, time.July, 7)},
	}
	for _, tc := range cases {
		rec := RecurringTransaction{Frequency: tc.freq, NextDueDate: tc.from}
		require.Equal(t, tc.want, rec.NextDue(), "%s from %s", tc.freq, tc.from)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	svc, admin, orgID := newFinanceFixture(t)

	_, err := svc.CreateTransaction(admin, orgID, TransactionInput{Title: "Free", AmountMinor: 0})
	require.ErrorIs(t, err, ErrBadAmount)

	txn, err := svc.CreateTransaction(admin, orgID, TransactionInput{
		Title:       "Plumbing repair",
		AmountMinor: 12500,
		Type:        TypeExpense,
	})
	require.NoError(t, err)
	require.Equal(t, "USD", txn.Currency)
	require.False(t, txn.OccurredAt.IsZero())
	require.True(t, strings.HasPrefix(txn.Slug, "plumbing-repair-"))
}

func TestCreateRecurringValidation(t *testing.T) {
	svc, admin, orgID := newFinanceFixture(t)

	_, err := svc.CreateRecurring(admin, orgID, RecurringInput{
		TransactionInput: TransactionInput{Title: "Rent", AmountMinor: 100000},
		Frequency:        Frequency("fortnightly"),
	})
	require.ErrorIs(t, err, ErrBadFrequency)

	start := date(2025, time.August, 1)
	rec, err := svc.CreateRecurring(admin, orgID, RecurringInput{
		TransactionInput: TransactionInput{Title: "Rent", AmountMinor: 100000},
		Frequency:        FreqMonthly,
		StartDate:        start,
	})
	require.NoError(t, err)
	require.Equal(t, start, rec.NextDueDate)
	require.True(t, rec.IsActive)
}

func TestSummarize(t *testing.T) {
	svc, admin, orgID := newFinanceFixture(t)

	_, err := svc.CreateTransaction(admin, orgID, TransactionInput{Title: "Donation", AmountMinor: 50000, Type: TypeIncome})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(admin, orgID, TransactionInput{Title: "Repair", AmountMinor: 12500, Type: TypeExpense})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(admin, orgID, TransactionInput{Title: "Cleaning", AmountMinor: 7500, Type: TypeExpense})
	require.NoError(t, err)

	sum, err := svc.Summarize(orgID, nil)
	require.NoError(t, err)
	require.Equal(t, int64(50000), sum.IncomeMinor)
	require.Equal(t, int64(20000), sum.ExpenseMinor)
	require.Equal(t, int64(30000), sum.NetMinor)
}

func TestProcessDueMaterializesAndAdvances(t *testing.T) {
	svc, admin, orgID := newFinanceFixture(t)

	start := date(2025, time.August, 1)
	rec, err := svc.CreateRecurring(admin, orgID, RecurringInput{
		TransactionInput: TransactionInput{Title: "Rent", AmountMinor: 100000},
		Frequency:        FreqMonthly,
		StartDate:        start,
	})
	require.NoError(t, err)

	now := date(2025, time.August, 2)
	created, err := svc.ProcessDue(now)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	txns, err := svc.ListForOrg(orgID, nil)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.True(t, txns[0].IsRecurring)
	require.Equal(t, int64(100000), txns[0].AmountMinor)

	var updated RecurringTransaction
	require.NoError(t, svc.db.First(&updated, "id = ?", rec.ID).Error)
	require.True(t, updated.NextDueDate.Equal(date(2025, time.September, 1)))

	// Not due again until September.
	created, err = svc.ProcessDue(now)
	require.NoError(t, err)
	require.Zero(t, created)
}

func TestProcessDueDeactivatesExpiredTemplates(t *testing.T) {
	svc, admin, orgID := newFinanceFixture(t)

	start := date(2025, time.August, 1)
	end := date(2025, time.July, 31)
	rec, err := svc.CreateRecurring(admin, orgID, RecurringInput{
		TransactionInput: TransactionInput{Title: "Old contract", AmountMinor: 5000},
		Frequency:        FreqMonthly,
		StartDate:        start,
		EndDate:          &end,
	})
	require.NoError(t, err)

	created, err := svc.ProcessDue(date(2025, time.August, 2))
	require.NoError(t, err)
	require.Zero(t, created)

	var updated RecurringTransaction
	require.NoError(t, svc.db.First(&updated, "id = ?", rec.ID).Error)
	require.False(t, updated.IsActive)
}

func TestProcessDueSkipsFutureTemplates(t *testing.T) {
	svc, admin, orgID := newFinanceFixture(t)

	_, err := svc.CreateRecurring(admin, orgID, RecurringInput{
		TransactionInput: TransactionInput{Title: "Future", AmountMinor: 5000},
		Frequency:        FreqMonthly,
		StartDate:        date(2025, time.December, 1),
	})
	require.NoError(t, err)

	created, err := svc.ProcessDue(date(2025, time.August, 2))
	require.NoError(t, err)
	require.Zero(t, created)
}
