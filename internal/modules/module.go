package modules

import (
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Module is a compiled-in feature area (issue management, finance).
type Module interface {
	// ID returns the unique module identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the module's routes on the given Fiber
	// group. The group already carries auth, space context and the
	// space-admin gate; auth is the shared service for per-route
	// role checks.
	RegisterRoutes(router fiber.Router, db *gorm.DB, auth *services.AuthService)
}
