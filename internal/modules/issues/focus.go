package issues

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/reporthub-io/reporthub/internal/middleware"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/gofiber/fiber/v2"
)

// focusAllowedPrefixes are reachable regardless of focus state.
var focusAllowedPrefixes = []string{
	"/api/auth/logout",
	"/static/",
	"/media/",
}

// FocusGate keeps a maintainer with an in-progress issue on that issue.
// Everything outside the issue's own routes (detail, status change,
// escalation) and the logout/static allow-list redirects to the focus
// endpoint with a warning.
func FocusGate(service *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		if user == nil || user.UserType != models.UserTypeMaintainer {
			return c.Next()
		}

		issue, err := service.InProgressFor(user.ID)
		if err != nil {
			slog.Error("focus check failed", "error", err, "user_id", user.ID.String())
			return c.Next()
		}
		if issue == nil {
			return c.Next()
		}

		path := c.Path()
		if strings.HasPrefix(path, issueBasePath(issue.Slug)) {
			return c.Next()
		}
		for _, p := range focusAllowedPrefixes {
			if strings.HasPrefix(path, p) {
				return c.Next()
			}
		}

		msg := `You are currently working on "` + sanitizeTitle(issue.Title) +
			`". Please complete, pause, or escalate it before accessing other pages.`
		return c.Redirect(issueBasePath(issue.Slug)+"/focus?flash="+url.QueryEscape(msg), fiber.StatusFound)
	}
}

func issueBasePath(slug string) string {
	return "/api/p/issues/" + slug
}

func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.ReplaceAll(title, `"`, "")
	return strings.ReplaceAll(title, ";", "")
}
