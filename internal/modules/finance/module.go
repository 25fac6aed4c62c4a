package finance

import (
	"github.com/reporthub-io/reporthub/internal/middleware"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Module wires the finance feature area. All routes are central-admin
// only.
type Module struct {
	service *Service
}

func New(service *Service) *Module {
	return &Module{service: service}
}

func (m *Module) ID() string {
	return "finance"
}

func (m *Module) Models() []interface{} {
	return []interface{}{&TransactionCategory{}, &Transaction{}, &RecurringTransaction{}}
}

func (m *Module) RegisterRoutes(router fiber.Router, db *gorm.DB, auth *services.AuthService) {
	handler := NewHandler(m.service, db)

	grp := router.Group("/finance", middleware.RoleRequired(auth, models.UserTypeCentralAdmin))
	grp.Post("/transactions", handler.CreateTransaction)
	grp.Get("/transactions", handler.List)
	grp.Get("/summary", handler.Summary)
	grp.Post("/recurring", handler.CreateRecurring)
}
