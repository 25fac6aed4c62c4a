package middleware

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/reporthub-io/reporthub/internal/access"
	"github.com/reporthub-io/reporthub/internal/dto"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/gofiber/fiber/v2"
)

const roleMismatchMessage = "You do not have permission to access this page."

// RoleRequired guards a route group with a required role. An
// authenticated request with the wrong role does not get a plain 403:
// the whole session is terminated and the user is sent back to login.
func RoleRequired(authService *services.AuthService, role models.UserType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			if wantsHTML(c) {
				return c.Redirect(access.DestLogin, fiber.StatusFound)
			}
			return unauthorized(c)
		}

		if user.UserType != role {
			if err := authService.ForceLogout(user.ID); err != nil {
				slog.Error("forced logout failed", "error", err, "user_id", user.ID.String())
			}
			c.ClearCookie(AccessTokenCookie)
			slog.Warn("role mismatch, session terminated",
				"user_id", user.ID.String(),
				"role", string(user.UserType),
				"required", string(role),
				"path", c.Path())

			if wantsHTML(c) {
				return c.Redirect(access.DestLogin+"?flash="+url.QueryEscape(roleMismatchMessage), fiber.StatusFound)
			}
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error:   true,
				Message: roleMismatchMessage,
			})
		}

		return c.Next()
	}
}

func wantsHTML(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}
