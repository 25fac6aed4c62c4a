package middleware

import (
	"log/slog"

	"github.com/reporthub-io/reporthub/internal/access"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/spacectx"
	"github.com/gofiber/fiber/v2"
)

// SpaceAdminGate blocks space admins that have no assigned space from
// everything outside the allow-list, redirecting them to the notice
// page. Anonymous users and other roles bypass the gate.
//
// The assignment count is checked per request on purpose: an assignment
// added or removed by a central admin takes effect on the user's very
// next request.
func SpaceAdminGate(resolver *spacectx.Resolver, allowlist access.Allowlist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || user.UserType != models.UserTypeSpaceAdmin {
			return c.Next()
		}

		hasSpaces, err := resolver.HasAssignments(user.ID)
		if err != nil {
			slog.Error("assignment check failed", "error", err, "user_id", user.ID.String())
			// Fail closed: treat a broken check as no assignments.
			hasSpaces = false
		}
		if hasSpaces {
			return c.Next()
		}

		if allowlist.Allows(c.Path()) {
			return c.Next()
		}

		return c.Redirect(access.DestNoSpacesNotice, fiber.StatusFound)
	}
}
