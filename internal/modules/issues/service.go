package issues

import (
	"errors"
	"fmt"

	coremodels "github.com/reporthub-io/reporthub/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrIssueNotFound     = errors.New("issue not found")
	ErrReportingClosed   = errors.New("issue reporting is closed for this space")
	ErrBadTransition     = errors.New("status transition not allowed")
	ErrNotMaintainerRole = errors.New("assignee must be a maintainer")
	ErrNotAssignee       = errors.New("only the assigned maintainer can do this")
)

// transitions lists the allowed status changes.
var transitions = map[Status][]Status{
	StatusOpen:       {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusResolved, StatusEscalated, StatusAssigned},
	StatusEscalated:  {StatusAssigned, StatusClosed},
	StatusResolved:   {StatusClosed, StatusOpen},
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Report files a new issue in the given space. Refused when the space's
// settings have reporting closed.
func (s *Service) Report(reporter *coremodels.User, space *coremodels.Space, title, description string, priority Priority) (*Issue, error) {
	var settings coremodels.SpaceSettings
	if err := s.db.Where("space_id = ?", space.ID).First(&settings).Error; err == nil {
		if !settings.IssueReportingOpen {
			return nil, ErrReportingClosed
		}
	}

	if priority == "" {
		priority = PriorityMedium
	}

	slug, err := coremodels.UniqueSlug(s.db, "issues", title)
	if err != nil {
		return nil, fmt.Errorf("failed to generate issue slug: %w", err)
	}

	issue := Issue{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      StatusOpen,
		Priority:    priority,
		OrgID:       space.OrgID,
		SpaceID:     space.ID,
		ReporterID:  reporter.ID,
		Slug:        slug,
	}
	if err := s.db.Create(&issue).Error; err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	return &issue, nil
}

func (s *Service) Get(slug string) (*Issue, error) {
	var issue Issue
	if err := s.db.Where("slug = ?", slug).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}
	return &issue, nil
}

// ListForSpace returns the space's issues, optionally filtered by
// status, newest first.
func (s *Service) ListForSpace(spaceID uuid.UUID, status Status) ([]Issue, error) {
	q := s.db.Where("space_id = ?", spaceID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []Issue
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return out, nil
}

// ListForReporter returns the issues a general user filed.
func (s *Service) ListForReporter(userID uuid.UUID) ([]Issue, error) {
	var out []Issue
	err := s.db.Where("reporter_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// Assign hands the issue to a maintainer and moves it to assigned.
func (s *Service) Assign(slug string, maintainer *coremodels.User) (*Issue, error) {
	if maintainer.UserType != coremodels.UserTypeMaintainer {
		return nil, ErrNotMaintainerRole
	}

	issue, err := s.Get(slug)
	if err != nil {
		return nil, err
	}
	if !allowed(issue.Status, StatusAssigned) {
		return nil, ErrBadTransition
	}

	updates := map[string]interface{}{
		"maintainer_id": maintainer.ID,
		"status":        StatusAssigned,
	}
	if err := s.db.Model(issue).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to assign issue: %w", err)
	}
	issue.MaintainerID = &maintainer.ID
	issue.Status = StatusAssigned
	return issue, nil
}

// ChangeStatus applies a transition on behalf of the assigned
// maintainer, recording an optional comment in the same transaction.
func (s *Service) ChangeStatus(slug string, actor *coremodels.User, next Status, comment string) (*Issue, error) {
	issue, err := s.Get(slug)
	if err != nil {
		return nil, err
	}
	if issue.MaintainerID == nil || *issue.MaintainerID != actor.ID {
		return nil, ErrNotAssignee
	}
	if !allowed(issue.Status, next) {
		return nil, ErrBadTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(issue).Update("status", next).Error; err != nil {
			return err
		}
		if comment != "" {
			return tx.Create(&IssueComment{
				IssueID:  issue.ID,
				AuthorID: actor.ID,
				Body:     comment,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to change status: %w", err)
	}
	issue.Status = next
	return issue, nil
}

// Comments returns an issue's comments oldest first.
func (s *Service) Comments(issueID uuid.UUID) ([]IssueComment, error) {
	var out []IssueComment
	err := s.db.Where("issue_id = ?", issueID).Order("created_at").Find(&out).Error
	return out, err
}

// InProgressFor returns the maintainer's current in-progress issue, nil
// when there is none. The focus gate calls this once per request.
func (s *Service) InProgressFor(userID uuid.UUID) (*Issue, error) {
	var issue Issue
	err := s.db.Where("maintainer_id = ? AND status = ?", userID, StatusInProgress).
		Order("updated_at").First(&issue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

func allowed(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
