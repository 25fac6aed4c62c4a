package issues

import (
	"errors"

	"github.com/reporthub-io/reporthub/internal/dto"
	"github.com/reporthub-io/reporthub/internal/middleware"
	coremodels "github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/spacectx"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reportRequest struct {
	SpaceSlug   string `json:"space_slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type assignRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type statusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type Handler struct {
	service *Service
	db      *gorm.DB
}

func NewHandler(service *Service, db *gorm.DB) *Handler {
	return &Handler{service: service, db: db}
}

// Report files an issue into a space by slug.
func (h *Handler) Report(c *fiber.Ctx) error {
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Title == "" || req.SpaceSlug == "" {
		return badRequest(c, "title and space_slug are required")
	}

	var space coremodels.Space
	if err := h.db.Where("slug = ?", req.SpaceSlug).First(&space).Error; err != nil {
		return notFound(c, "space not found")
	}

	issue, err := h.service.Report(middleware.CurrentUser(c), &space, req.Title, req.Description, Priority(req.Priority))
	if err != nil {
		if errors.Is(err, ErrReportingClosed) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		}
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(issue)
}

// List returns the issues of the space currently in context.
func (h *Handler) List(c *fiber.Ctx) error {
	ctx := spacectx.FromRequest(c)
	if !ctx.HasSelection() {
		return notFound(c, "no space selected")
	}

	out, err := h.service.ListForSpace(ctx.Selected.ID, Status(c.Query("status")))
	if err != nil {
		return internalError(c)
	}
	return c.JSON(out)
}

// Mine returns the requesting user's reported issues.
func (h *Handler) Mine(c *fiber.Ctx) error {
	out, err := h.service.ListForReporter(middleware.CurrentUser(c).ID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(out)
}

func (h *Handler) Detail(c *fiber.Ctx) error {
	issue, err := h.service.Get(c.Params("slug"))
	if err != nil {
		return notFound(c, "issue not found")
	}
	comments, err := h.service.Comments(issue.ID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{"issue": issue, "comments": comments})
}

// Assign hands an issue to a maintainer.
func (h *Handler) Assign(c *fiber.Ctx) error {
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var maintainer coremodels.User
	if err := h.db.First(&maintainer, "id = ?", req.UserID).Error; err != nil {
		return notFound(c, "user not found")
	}

	issue, err := h.service.Assign(c.Params("slug"), &maintainer)
	switch {
	case err == nil:
		return c.JSON(issue)
	case errors.Is(err, ErrIssueNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, ErrNotMaintainerRole), errors.Is(err, ErrBadTransition):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// ChangeStatus applies a status transition with an optional comment.
func (h *Handler) ChangeStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	issue, err := h.service.ChangeStatus(c.Params("slug"), middleware.CurrentUser(c), Status(req.Status), req.Comment)
	return h.respondTransition(c, issue, err)
}

// Escalate is a status change fixed to escalated.
func (h *Handler) Escalate(c *fiber.Ctx) error {
	var req statusRequest
	_ = c.BodyParser(&req)

	issue, err := h.service.ChangeStatus(c.Params("slug"), middleware.CurrentUser(c), StatusEscalated, req.Comment)
	return h.respondTransition(c, issue, err)
}

// Focus serves the focus-mode payload for an in-progress issue.
func (h *Handler) Focus(c *fiber.Ctx) error {
	issue, err := h.service.Get(c.Params("slug"))
	if err != nil {
		return notFound(c, "issue not found")
	}
	return c.JSON(fiber.Map{
		"issue": issue,
		"flash": c.Query("flash"),
	})
}

func (h *Handler) respondTransition(c *fiber.Ctx, issue *Issue, err error) error {
	switch {
	case err == nil:
		return c.JSON(issue)
	case errors.Is(err, ErrIssueNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, ErrNotAssignee):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, ErrBadTransition):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
