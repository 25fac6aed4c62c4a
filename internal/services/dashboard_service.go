package services

import (
	"fmt"

	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/spacectx"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DashboardService assembles the per-role dashboard payloads. It reads
// the issues table by name so the core stays decoupled from the issues
// module package.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type IssueCounts struct {
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
	Escalated  int64 `json:"escalated"`
}

// Overview returns the role-appropriate dashboard payload.
func (s *DashboardService) Overview(user *models.User, ctx spacectx.Context) (map[string]interface{}, error) {
	out := map[string]interface{}{
		"user_type": string(user.UserType),
		"full_name": user.FullName(),
	}

	switch user.UserType {
	case models.UserTypeCentralAdmin:
		var orgCount, spaceCount int64
		if err := s.db.Model(&models.Organization{}).
			Joins("JOIN organization_central_admins oca ON oca.organization_id = organizations.id").
			Where("oca.user_id = ?", user.ID).
			Count(&orgCount).Error; err != nil {
			return nil, fmt.Errorf("org count failed: %w", err)
		}
		if err := s.db.Model(&models.Space{}).
			Joins("JOIN organization_central_admins oca ON oca.organization_id = spaces.org_id").
			Where("oca.user_id = ?", user.ID).
			Count(&spaceCount).Error; err != nil {
			return nil, fmt.Errorf("space count failed: %w", err)
		}
		out["organizations"] = orgCount
		out["spaces"] = spaceCount
		if ctx.HasSelection() {
			counts, err := s.issueCountsForSpace(ctx.Selected.ID)
			if err != nil {
				return nil, err
			}
			out["selected_space"] = ctx.Selected.Slug
			out["issues"] = counts
		}

	case models.UserTypeSpaceAdmin:
		out["administered_spaces"] = len(ctx.Administered)
		if ctx.HasSelection() {
			counts, err := s.issueCountsForSpace(ctx.Selected.ID)
			if err != nil {
				return nil, err
			}
			out["selected_space"] = ctx.Selected.Slug
			out["issues"] = counts
		}

	case models.UserTypeMaintainer:
		var assigned, inProgress int64
		if err := s.db.Table("issues").
			Where("maintainer_id = ? AND status IN ?", user.ID, []string{"assigned", "in_progress"}).
			Count(&assigned).Error; err != nil {
			return nil, fmt.Errorf("workload count failed: %w", err)
		}
		if err := s.db.Table("issues").
			Where("maintainer_id = ? AND status = ?", user.ID, "in_progress").
			Count(&inProgress).Error; err != nil {
			return nil, fmt.Errorf("workload count failed: %w", err)
		}
		out["assigned_issues"] = assigned
		out["in_progress"] = inProgress

	case models.UserTypeGeneralUser:
		var reported int64
		if err := s.db.Table("issues").
			Where("reporter_id = ?", user.ID).
			Count(&reported).Error; err != nil {
			return nil, fmt.Errorf("reported count failed: %w", err)
		}
		out["reported_issues"] = reported
	}

	return out, nil
}

func (s *DashboardService) issueCountsForSpace(spaceID uuid.UUID) (IssueCounts, error) {
	var counts IssueCounts
	pairs := []struct {
		status string
		dest   *int64
	}{
		{"open", &counts.Open},
		{"in_progress", &counts.InProgress},
		{"resolved", &counts.Resolved},
		{"escalated", &counts.Escalated},
	}
	for _, p := range pairs {
		if err := s.db.Table("issues").
			Where("space_id = ? AND status = ?", spaceID, p.status).
			Count(p.dest).Error; err != nil {
			return counts, fmt.Errorf("issue count failed: %w", err)
		}
	}
	return counts, nil
}
