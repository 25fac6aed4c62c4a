package finance

import (
	"errors"
	"time"

	"github.com/reporthub-io/reporthub/internal/dto"
	"github.com/reporthub-io/reporthub/internal/middleware"
	coremodels "github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/spacectx"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRequest struct {
	OrgSlug       string `json:"org_slug"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
	Type          string `json:"type"`
	PaymentMethod string `json:"payment_method,omitempty"`
	SpaceSlug     string `json:"space_slug,omitempty"`
	OccurredAt    string `json:"occurred_at,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type recurringRequest struct {
	transactionRequest
	Frequency string `json:"frequency"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type Handler struct {
	service *Service
	db      *gorm.DB
}

func NewHandler(service *Service, db *gorm.DB) *Handler {
	return &Handler{service: service, db: db}
}

func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Title == "" || req.OrgSlug == "" {
		return badRequest(c, "title and org_slug are required")
	}

	org, err := h.adminOrg(c, req.OrgSlug)
	if err != nil {
		return forbidden(c, err.Error())
	}

	in, err := h.transactionInput(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	txn, err := h.service.CreateTransaction(middleware.CurrentUser(c), org.ID, in)
	if err != nil {
		if errors.Is(err, ErrBadAmount) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

func (h *Handler) CreateRecurring(c *fiber.Ctx) error {
	var req recurringRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Title == "" || req.OrgSlug == "" {
		return badRequest(c, "title and org_slug are required")
	}

	org, err := h.adminOrg(c, req.OrgSlug)
	if err != nil {
		return forbidden(c, err.Error())
	}

	base, err := h.transactionInput(req.transactionRequest)
	if err != nil {
		return badRequest(c, err.Error())
	}

	in := RecurringInput{TransactionInput: base, Frequency: Frequency(req.Frequency)}
	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return badRequest(c, "start_date must be YYYY-MM-DD")
		}
		in.StartDate = start
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return badRequest(c, "end_date must be YYYY-MM-DD")
		}
		in.EndDate = &end
	}

	rec, err := h.service.CreateRecurring(middleware.CurrentUser(c), org.ID, in)
	if err != nil {
		if errors.Is(err, ErrBadAmount) || errors.Is(err, ErrBadFrequency) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) List(c *fiber.Ctx) error {
	org, err := h.adminOrg(c, c.Query("org_slug"))
	if err != nil {
		return forbidden(c, err.Error())
	}

	out, err := h.service.ListForOrg(org.ID, h.selectedSpaceID(c))
	if err != nil {
		return internalError(c)
	}
	return c.JSON(out)
}

func (h *Handler) Summary(c *fiber.Ctx) error {
	org, err := h.adminOrg(c, c.Query("org_slug"))
	if err != nil {
		return forbidden(c, err.Error())
	}

	sum, err := h.service.Summarize(org.ID, h.selectedSpaceID(c))
	if err != nil {
		return internalError(c)
	}
	return c.JSON(sum)
}

func (h *Handler) transactionInput(req transactionRequest) (TransactionInput, error) {
	in := TransactionInput{
		Title:         req.Title,
		Description:   req.Description,
		AmountMinor:   req.AmountMinor,
		Currency:      req.Currency,
		Type:          TransactionType(req.Type),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	if req.OccurredAt != "" {
		at, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			return in, errors.New("occurred_at must be RFC3339")
		}
		in.OccurredAt = at
	}
	if req.SpaceSlug != "" {
		var space coremodels.Space
		if err := h.db.Where("slug = ?", req.SpaceSlug).First(&space).Error; err != nil {
			return in, errors.New("space not found")
		}
		in.SpaceID = &space.ID
	}
	return in, nil
}

func (h *Handler) selectedSpaceID(c *fiber.Ctx) *uuid.UUID {
	ctx := spacectx.FromRequest(c)
	if ctx.HasSelection() {
		return &ctx.Selected.ID
	}
	return nil
}

// adminOrg resolves the org by slug, requiring the requester to be one
// of its central admins.
func (h *Handler) adminOrg(c *fiber.Ctx, orgSlug string) (*coremodels.Organization, error) {
	if orgSlug == "" {
		return nil, errors.New("org_slug is required")
	}
	user := middleware.CurrentUser(c)
	var org coremodels.Organization
	err := h.db.
		Joins("JOIN organization_central_admins oca ON oca.organization_id = organizations.id").
		Where("oca.user_id = ? AND organizations.slug = ?", user.ID, orgSlug).
		First(&org).Error
	if err != nil {
		return nil, errors.New("not a central admin of this organization")
	}
	return &org, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
