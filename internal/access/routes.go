package access

import (
	"github.com/reporthub-io/reporthub/internal/models"
)

// Destinations the role router can send a user to after login.
const (
	DestCentralAdminDashboard = "/dashboard/central-admin"
	DestSpaceAdminDashboard   = "/dashboard/space-admin"
	DestSupervisorDashboard   = "/dashboard/supervisor"
	DestDefaultDashboard      = "/dashboard"
	DestLanding               = "/"
	DestLogin                 = "/login"
	DestNoSpacesNotice        = "/api/services/no-spaces-assigned"
)

// NoPermissionsMessage is shown when an authenticated account matches no
// role route. That state is a data anomaly, not a user mistake.
const NoPermissionsMessage = "Your account has no proper permissions. Please contact an administrator."

// RoleRoute pairs a role predicate with a post-login destination.
type RoleRoute struct {
	Match       func(*models.User) bool
	Destination string
}

// Router resolves a user's post-login destination by walking an ordered
// table of role predicates. The table is fixed at construction.
type Router struct {
	routes []RoleRoute
}

// NewRouter builds the default priority table: central admin, space
// admin, supervisor, then a catch-all for every remaining known role.
func NewRouter() *Router {
	return &Router{routes: []RoleRoute{
		{Match: (*models.User).IsCentralAdmin, Destination: DestCentralAdminDashboard},
		{Match: (*models.User).IsSpaceAdmin, Destination: DestSpaceAdminDashboard},
		{Match: (*models.User).IsSupervisor, Destination: DestSupervisorDashboard},
		{Match: hasKnownRole, Destination: DestDefaultDashboard},
	}}
}

// Resolve walks the table in order and returns the first matching
// destination. ok is false when no predicate matches; the caller must
// then terminate the session and send the user to the landing page.
func (r *Router) Resolve(user *models.User) (dest string, ok bool) {
	for _, route := range r.routes {
		if route.Match(user) {
			return route.Destination, true
		}
	}
	return DestLanding, false
}

func hasKnownRole(u *models.User) bool {
	switch u.UserType {
	case models.UserTypeCentralAdmin, models.UserTypeSpaceAdmin,
		models.UserTypeMaintainer, models.UserTypeSupervisor,
		models.UserTypeReviewer, models.UserTypeGeneralUser:
		return true
	}
	return false
}
