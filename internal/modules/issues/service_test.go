package issues

import (
	"strings"
	"testing"

	"github.com/reporthub-io/reporthub/internal/database"
	coremodels "github.com/reporthub-io/reporthub/internal/models"
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
	require.NoError(t, db.AutoMigrate(&Issue{}, &IssueComment{}))
	return db
}

type fixture struct {
	db         *gorm.DB
	service    *Service
	space      *coremodels.Space
	reporter   *coremodels.User
	maintainer *coremodels.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	org := &coremodels.Organization{Name: "Acme", Slug: "acme"}
	require.NoError(t, db.Create(org).Error)
	space := &coremodels.Space{Name: "North Wing", OrgID: org.ID, Slug: "north-wing"}
	require.NoError(t, db.Create(space).Error)
	require.NoError(t, db.Create(&coremodels.SpaceSettings{SpaceID: space.ID, IssueReportingOpen: true}).Error)

	phone := "+15557770000"
	reporter := &coremodels.User{
		Phone:      &phone,
		AuthMethod: coremodels.AuthMethodPhone,
		UserType:   coremodels.UserTypeGeneralUser,
		IsActive:   true,
	}
	require.NoError(t, db.Create(reporter).Error)

	email := "fix@example.com"
	maintainer := &coremodels.User{
		Email:      &email,
		AuthMethod: coremodels.AuthMethodEmail,
		UserType:   coremodels.UserTypeMaintainer,
		IsActive:   true,
	}
	require.NoError(t, db.Create(maintainer).Error)

	return &fixture{
		db:         db,
		service:    NewService(db),
		space:      space,
		reporter:   reporter,
		maintainer: maintainer,
	}
}

func (f *fixture) report(t *testing.T, title string) *Issue {
	t.Helper()
	issue, err := f.service.Report(f.reporter, f.space, title, "something broke", PriorityHigh)
	require.NoError(t, err)
	return issue
}

func TestReportCreatesOpenIssue(t *testing.T) {
	f := newFixture(t)

	issue := f.report(t, "Leaky pipe in hallway")
	require.Equal(t, StatusOpen, issue.Status)
	require.Equal(t, PriorityHigh, issue.Priority)
	require.Equal(t, f.space.ID, issue.SpaceID)
	require.Equal(t, f.reporter.ID, issue.ReporterID)
	require.True(t, strings.HasPrefix(issue.Slug, "leaky-pipe-in-hallway-"))
}

func TestReportRefusedWhenReportingClosed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&coremodels.SpaceSettings{}).
		Where("space_id = ?", f.space.ID).
		Update("issue_reporting_open", false).Error)

	_, err := f.service.Report(f.reporter, f.space, "Broken window", "", PriorityLow)
	require.ErrorIs(t, err, ErrReportingClosed)
}

func TestAssignRequiresMaintainerRole(t *testing.T) {
	f := newFixture(t)
	issue := f.report(t, "Broken window")

	_, err := f.service.Assign(issue.Slug, f.reporter)
	require.ErrorIs(t, err, ErrNotMaintainerRole)
}

func TestAssignMovesIssueToAssigned(t *testing.T) {
	f := newFixture(t)
	issue := f.report(t, "Broken window")

	assigned, err := f.service.Assign(issue.Slug, f.maintainer)
	require.NoError(t, err)
	require.Equal(t, StatusAssigned, assigned.Status)
	require.Equal(t, f.maintainer.ID, *assigned.MaintainerID)
}

func TestStatusTransitionChain(t *testing.T) {
	f := newFixture(t)
	issue := f.report(t, "Broken window")
	_, err := f.service.Assign(issue.Slug, f.maintainer)
	require.NoError(t, err)

	for _, next := range []Status{StatusInProgress, StatusResolved, StatusClosed} {
		updated, err := f.service.ChangeStatus(issue.Slug, f.maintainer, next, "")
		require.NoError(t, err, "transition to %s", next)
		require.Equal(t, next, updated.Status)
	}
}

func TestStatusTransitionRejectsIllegalJump(t *testing.T) {
	f := newFixture(t)
	issue := f.report(t, "Broken window")
	_, err := f.service.Assign(issue.Slug, f.maintainer)
	require.NoError(t, err)

	// assigned -> resolved skips in_progress.
	_, err = f.service.ChangeStatus(issue.Slug, f.maintainer, StatusResolved, "")
	require.ErrorIs(t, err, ErrBadTransition)
}

func TestStatusChangeOnlyByAssignee(t *testing.T) {
	f := newFixture(t)
	issue := f.report(t, "Broken window")
	_, err := f.service.Assign(issue.Slug, f.maintainer)
	require.NoError(t, err)

	email := "other@example.com"
	other := &coremodels.User{
		Email:      &email,
		AuthMethod: coremodels.AuthMethodEmail,
		UserType:   coremodels.UserTypeMaintainer,
		IsActive:   true,
	}
	require.NoError(t, f.db.Create(other).Error)

	_, err = f.service.ChangeStatus(issue.Slug, other, StatusInProgress, "")
	require.ErrorIs(t, err, ErrNotAssignee)
}

func TestStatusChangeRecordsComment(t *testing.T) {
	f := newFixture(t)
	issue := f.report(t, "Broken window")
	_, err := f.service.Assign(issue.Slug, f.maintainer)
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(issue.Slug, f.maintainer, StatusInProgress, "started looking at it")
	require.NoError(t, err)

	comments, err := f.service.Comments(issue.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "started looking at it", comments[0].Body)
	require.Equal(t, f.maintainer.ID, comments[0].AuthorID)
}

func TestEscalationPath(t *testing.T) {
	f := newFixture(t)
	issue := f.report(t, "Broken window")
	_, err := f.service.Assign(issue.Slug, f.maintainer)
	require.NoError(t, err)
	_, err = f.service.ChangeStatus(issue.Slug, f.maintainer, StatusInProgress, "")
	require.NoError(t, err)

	updated, err := f.service.ChangeStatus(issue.Slug, f.maintainer, StatusEscalated, "needs a contractor")
	require.NoError(t, err)
	require.Equal(t, StatusEscalated, updated.Status)
}

func TestInProgressFor(t *testing.T) {
	f := newFixture(t)

	got, err := f.service.InProgressFor(f.maintainer.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	issue := f.report(t, "Broken window")
	_, err = f.service.Assign(issue.Slug, f.maintainer)
	require.NoError(t, err)
	_, err = f.service.ChangeStatus(issue.Slug, f.maintainer, StatusInProgress, "")
	require.NoError(t, err)

	got, err = f.service.InProgressFor(f.maintainer.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, issue.ID, got.ID)
}

func TestGetUnknownSlug(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Get("nope")
	require.ErrorIs(t, err, ErrIssueNotFound)
}

func TestListForSpaceFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	f.report(t, "First")
	second := f.report(t, "Second")
	_, err := f.service.Assign(second.Slug, f.maintainer)
	require.NoError(t, err)

	open, err := f.service.ListForSpace(f.space.ID, StatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)

	all, err := f.service.ListForSpace(f.space.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}
