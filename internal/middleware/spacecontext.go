package middleware

import (
	"log/slog"

	"github.com/reporthub-io/reporthub/internal/spacectx"
	"github.com/gofiber/fiber/v2"
)

// SpaceContext attaches the per-request space context after
// authentication. Anonymous requests pass through untouched; every
// authenticated request gets a context, possibly empty.
func SpaceContext(resolver *spacectx.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Next()
		}

		ctx, err := resolver.Resolve(user, c.Query("space_filter"))
		if err != nil {
			// The context is a UI convenience; a resolver failure
			// must not take the request down.
			slog.Error("space context resolution failed", "error", err, "user_id", user.ID.String())
			ctx = spacectx.Context{}
		}

		spacectx.Store(c, ctx)
		return c.Next()
	}
}
