package spacectx

import (
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/gofiber/fiber/v2"
)

const localsKey = "space_context"

// Context is the per-request space state. It is populated for every
// authenticated request, possibly to its zero value, so downstream code
// checks fields instead of probing for presence.
type Context struct {
	// Selected is the space currently in context, nil when none.
	Selected *models.Space
	// Settings belongs to Selected, nil when no space is selected.
	Settings *models.SpaceSettings
	// Administered lists the spaces a space admin manages, in
	// assignment order. Nil for every other role.
	Administered []models.Space
}

// HasSelection reports whether a space is in context.
func (c Context) HasSelection() bool {
	return c.Selected != nil
}

// Store attaches ctx to the request.
func Store(c *fiber.Ctx, ctx Context) {
	c.Locals(localsKey, ctx)
}

// FromRequest returns the space context for the request, zero-valued
// when the resolver never ran (anonymous requests).
func FromRequest(c *fiber.Ctx) Context {
	if ctx, ok := c.Locals(localsKey).(Context); ok {
		return ctx
	}
	return Context{}
}
