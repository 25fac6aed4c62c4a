package issues

import (
	"net/http/httptest"
	"strings"
	"testing"

	coremodels "github.com/reporthub-io/reporthub/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newFocusApp(f *fixture, user *coremodels.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("current_user", user)
		return c.Next()
	})
	app.Use(FocusGate(f.service))
	app.All("/*", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func startWork(t *testing.T, f *fixture, title string) *Issue {
	t.Helper()
	issue := f.report(t, title)
	_, err := f.service.Assign(issue.Slug, f.maintainer)
	require.NoError(t, err)
	_, err = f.service.ChangeStatus(issue.Slug, f.maintainer, StatusInProgress, "")
	require.NoError(t, err)
	return issue
}

func TestFocusGateRedirectsAwayFromOtherPages(t *testing.T) {
	f := newFixture(t)
	issue := startWork(t, f, "Leaky pipe")
	app := newFocusApp(f, f.maintainer)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	loc := resp.Header.Get(fiber.HeaderLocation)
	require.True(t, strings.HasPrefix(loc, "/api/p/issues/"+issue.Slug+"/focus?flash="))
}

func TestFocusGateAllowsTheIssueItself(t *testing.T) {
	f := newFixture(t)
	issue := startWork(t, f, "Leaky pipe")
	app := newFocusApp(f, f.maintainer)

	for _, path := range []string{
		"/api/p/issues/" + issue.Slug,
		"/api/p/issues/" + issue.Slug + "/status",
		"/api/p/issues/" + issue.Slug + "/escalate",
		"/api/auth/logout",
		"/static/app.css",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "path %s", path)
	}
}

func TestFocusGateIdleMaintainerPasses(t *testing.T) {
	f := newFixture(t)
	app := newFocusApp(f, f.maintainer)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestFocusGateIgnoresOtherRoles(t *testing.T) {
	f := newFixture(t)
	startWork(t, f, "Leaky pipe")
	app := newFocusApp(f, f.reporter)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSanitizeTitle(t *testing.T) {
	require.Equal(t, "say hello", sanitizeTitle(`  say "hello";  `))
}
