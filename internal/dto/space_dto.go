package dto

import "github.com/google/uuid"

type SpaceResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type SpaceContextResponse struct {
	SelectedSpace *SpaceResponse        `json:"selected_space"`
	Settings      *SpaceSettingsPayload `json:"settings"`
	UserSpaces    []SpaceResponse       `json:"user_spaces,omitempty"`
}

type SpaceSettingsPayload struct {
	IssueReportingOpen bool                   `json:"issue_reporting_open"`
	FinanceEnabled     bool                   `json:"finance_enabled"`
	Extra              map[string]interface{} `json:"extra"`
}

type CreateSpaceRequest struct {
	OrgSlug     string `json:"org_slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AssignAdminRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type SetSettingsKeyRequest struct {
	Value interface{} `json:"value"`
}

type CreatePersonRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	UserType  string `json:"user_type"`
	OrgSlug   string `json:"org_slug"`
}
