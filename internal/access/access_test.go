package access_test

import (
	"testing"

	"github.com/reporthub-io/reporthub/internal/access"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/stretchr/testify/require"
)

func userWithRole(role models.UserType) *models.User {
	return &models.User{UserType: role}
}

func TestRouterPriorityOrder(t *testing.T) {
	router := access.NewRouter()

	cases := []struct {
		role models.UserType
		want string
	}{
		{models.UserTypeCentralAdmin, access.DestCentralAdminDashboard},
		{models.UserTypeSpaceAdmin, access.DestSpaceAdminDashboard},
		{models.UserTypeSupervisor, access.DestSupervisorDashboard},
		{models.UserTypeMaintainer, access.DestDefaultDashboard},
		{models.UserTypeReviewer, access.DestDefaultDashboard},
		{models.UserTypeGeneralUser, access.DestDefaultDashboard},
	}
	for _, tc := range cases {
		dest, ok := router.Resolve(userWithRole(tc.role))
		require.True(t, ok, "role %s", tc.role)
		require.Equal(t, tc.want, dest, "role %s", tc.role)
	}
}

func TestRouterUnknownRoleFails(t *testing.T) {
	router := access.NewRouter()

	dest, ok := router.Resolve(userWithRole(models.UserType("ghost")))
	require.False(t, ok)
	require.Equal(t, access.DestLanding, dest)
}

func TestDefaultGateAllowlist(t *testing.T) {
	allowlist := access.DefaultGateAllowlist()

	require.True(t, allowlist.Allows("/admin/users"))
	require.True(t, allowlist.Allows("/static/css/app.css"))
	require.True(t, allowlist.Allows("/media/uploads/x.png"))
	require.True(t, allowlist.Allows(access.DestNoSpacesNotice))
	require.True(t, allowlist.Allows("/api/auth/logout"))

	require.False(t, allowlist.Allows("/api/dashboard"))
	require.False(t, allowlist.Allows("/api/p/issues"))
	require.False(t, allowlist.Allows("/"))
}

func TestAllowlistPrefixSemantics(t *testing.T) {
	allowlist := access.NewAllowlist("/foo/")

	require.True(t, allowlist.Allows("/foo/bar"))
	require.False(t, allowlist.Allows("/foo"))
	require.False(t, allowlist.Allows("/foobar"))
}
