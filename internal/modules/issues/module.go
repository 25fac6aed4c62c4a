package issues

import (
	"github.com/reporthub-io/reporthub/internal/middleware"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Module wires the issue management feature area.
type Module struct {
	service *Service
}

func New(service *Service) *Module {
	return &Module{service: service}
}

func (m *Module) ID() string {
	return "issues"
}

func (m *Module) Models() []interface{} {
	return []interface{}{&Issue{}, &IssueComment{}}
}

func (m *Module) RegisterRoutes(router fiber.Router, db *gorm.DB, auth *services.AuthService) {
	handler := NewHandler(m.service, db)

	grp := router.Group("/issues")
	grp.Post("/", middleware.RoleRequired(auth, models.UserTypeGeneralUser), handler.Report)
	grp.Get("/mine", middleware.RoleRequired(auth, models.UserTypeGeneralUser), handler.Mine)
	grp.Get("/", middleware.RoleRequired(auth, models.UserTypeSpaceAdmin), handler.List)
	grp.Post("/:slug/assign", middleware.RoleRequired(auth, models.UserTypeSpaceAdmin), handler.Assign)
	grp.Post("/:slug/status", middleware.RoleRequired(auth, models.UserTypeMaintainer), handler.ChangeStatus)
	grp.Post("/:slug/escalate", middleware.RoleRequired(auth, models.UserTypeMaintainer), handler.Escalate)
	grp.Get("/:slug/focus", middleware.RoleRequired(auth, models.UserTypeMaintainer), handler.Focus)
	grp.Get("/:slug", handler.Detail)
}
