package routes

import (
	"time"

	"github.com/reporthub-io/reporthub/internal/access"
	"github.com/reporthub-io/reporthub/internal/config"
	"github.com/reporthub-io/reporthub/internal/handlers"
	"github.com/reporthub-io/reporthub/internal/metrics"
	"github.com/reporthub-io/reporthub/internal/middleware"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/modules"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/reporthub-io/reporthub/internal/spacectx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Deps struct {
	Cfg         *config.Config
	DB          *gorm.DB
	AuthService *services.AuthService
	Resolver    *spacectx.Resolver
	Allowlist   access.Allowlist

	AuthHandler      *handlers.AuthHandler
	SpaceHandler     *handlers.SpaceHandler
	PeopleHandler    *handlers.PeopleHandler
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler

	// FocusGate comes from the issues module; nil disables it.
	FocusGate fiber.Handler

	Modules []modules.Module
}

func Setup(app *fiber.App, d Deps) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", d.HealthHandler.Check)

	// Auth — public, with a stricter limiter: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login/phone", d.AuthHandler.PhoneLogin)
	auth.Post("/login/email", d.AuthHandler.EmailLogin)
	auth.Post("/refresh", d.AuthHandler.Refresh)

	// The authenticated pipeline: token check, user/session resolution,
	// space context, then the space-admin gate and the focus gate.
	// Mounted once on /api, after the public routes, so it runs a
	// single time per request whatever group the route lives in.
	api.Use(
		middleware.JWTProtected(d.Cfg),
		middleware.LoadUser(d.AuthService),
		middleware.SpaceContext(d.Resolver),
		middleware.SpaceAdminGate(d.Resolver, d.Allowlist),
	)
	if d.FocusGate != nil {
		api.Use(d.FocusGate)
	}

	priv := api.Group("")
	priv.Post("/auth/logout", d.AuthHandler.Logout)
	priv.Get("/auth/whoami", d.AuthHandler.Whoami)

	priv.Get("/services/no-spaces-assigned", d.SpaceHandler.NoSpacesAssigned)
	priv.Get("/space-context", d.SpaceHandler.Context)
	priv.Get("/settings", d.SpaceHandler.Settings)
	priv.Get("/dashboard", d.DashboardHandler.Overview)

	// Central-admin management surface
	spaces := priv.Group("/spaces", middleware.RoleRequired(d.AuthService, models.UserTypeCentralAdmin))
	spaces.Get("/", d.SpaceHandler.ListSpaces)
	spaces.Post("/", d.SpaceHandler.CreateSpace)
	spaces.Post("/:slug/admins", d.SpaceHandler.AssignAdmin)
	spaces.Delete("/:slug/admins", d.SpaceHandler.UnassignAdmin)
	spaces.Put("/:slug/settings/:key", d.SpaceHandler.SetSettingsKey)
	spaces.Delete("/:slug/settings/:key", d.SpaceHandler.DeleteSettingsKey)

	people := priv.Group("/people", middleware.RoleRequired(d.AuthService, models.UserTypeCentralAdmin))
	people.Get("/", d.PeopleHandler.List)
	people.Post("/", d.PeopleHandler.Create)
	people.Put("/:id/password", d.PeopleHandler.SetPassword)

	// Feature modules mount under /api/p; the pipeline above already
	// covers them.
	protected := api.Group("/p")
	for _, m := range d.Modules {
		m.RegisterRoutes(protected, d.DB, d.AuthService)
	}
}
