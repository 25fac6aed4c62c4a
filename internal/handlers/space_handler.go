package handlers

import (
	"encoding/json"
	"errors"

	"github.com/reporthub-io/reporthub/internal/dto"
	"github.com/reporthub-io/reporthub/internal/middleware"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/reporthub-io/reporthub/internal/spacectx"
	"github.com/gofiber/fiber/v2"
)

type SpaceHandler struct {
	spaceService *services.SpaceService
}

func NewSpaceHandler(spaceService *services.SpaceService) *SpaceHandler {
	return &SpaceHandler{spaceService: spaceService}
}

// Context exposes the request's resolved space context.
func (h *SpaceHandler) Context(c *fiber.Ctx) error {
	ctx := spacectx.FromRequest(c)
	return c.JSON(spaceContextPayload(ctx))
}

func (h *SpaceHandler) ListSpaces(c *fiber.Ctx) error {
	spaces, err := h.spaceService.ListSpaces(middleware.CurrentUser(c))
	if err != nil {
		return internalError(c)
	}
	out := make([]dto.SpaceResponse, 0, len(spaces))
	for _, s := range spaces {
		out = append(out, spacePayload(&s))
	}
	return c.JSON(out)
}

func (h *SpaceHandler) CreateSpace(c *fiber.Ctx) error {
	var req dto.CreateSpaceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" || req.OrgSlug == "" {
		return badRequest(c, "name and org_slug are required")
	}

	space, err := h.spaceService.CreateSpace(middleware.CurrentUser(c), req.OrgSlug, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrNotOrgAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		}
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(spacePayload(space))
}

func (h *SpaceHandler) AssignAdmin(c *fiber.Ctx) error {
	var req dto.AssignAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	err := h.spaceService.AssignAdmin(middleware.CurrentUser(c), c.Params("slug"), req.UserID)
	switch {
	case err == nil:
		return c.JSON(dto.MessageResponse{Message: "Admin assigned"})
	case errors.Is(err, services.ErrSpaceNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrNotSpaceAdmin),
		errors.Is(err, services.ErrAlreadyAssigned):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

func (h *SpaceHandler) UnassignAdmin(c *fiber.Ctx) error {
	var req dto.AssignAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	err := h.spaceService.UnassignAdmin(middleware.CurrentUser(c), c.Params("slug"), req.UserID)
	switch {
	case err == nil:
		return c.JSON(dto.MessageResponse{Message: "Admin unassigned"})
	case errors.Is(err, services.ErrSpaceNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

// Settings returns the settings of the currently selected space.
func (h *SpaceHandler) Settings(c *fiber.Ctx) error {
	ctx := spacectx.FromRequest(c)
	if !ctx.HasSelection() || ctx.Settings == nil {
		return notFound(c, "no space selected")
	}
	return c.JSON(settingsPayload(ctx.Settings))
}

func (h *SpaceHandler) SetSettingsKey(c *fiber.Ctx) error {
	var req dto.SetSettingsKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	err := h.spaceService.SetSettingsKey(middleware.CurrentUser(c), c.Params("slug"), c.Params("key"), req.Value)
	switch {
	case err == nil:
		return c.JSON(dto.MessageResponse{Message: "Setting updated"})
	case errors.Is(err, services.ErrSpaceNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, services.ErrSettingsKeyEmpty):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

func (h *SpaceHandler) DeleteSettingsKey(c *fiber.Ctx) error {
	err := h.spaceService.DeleteSettingsKey(middleware.CurrentUser(c), c.Params("slug"), c.Params("key"))
	switch {
	case err == nil:
		return c.JSON(dto.MessageResponse{Message: "Setting removed"})
	case errors.Is(err, services.ErrSpaceNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

// NoSpacesAssigned is the notice page target for gated space admins.
func (h *SpaceHandler) NoSpacesAssigned(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{
		Message: "No spaces have been assigned to your account yet. Please contact your central administrator.",
	})
}

func spacePayload(s *models.Space) dto.SpaceResponse {
	return dto.SpaceResponse{ID: s.ID, Name: s.Name, Slug: s.Slug}
}

func settingsPayload(s *models.SpaceSettings) *dto.SpaceSettingsPayload {
	extra := map[string]interface{}{}
	if len(s.Extra) > 0 {
		_ = json.Unmarshal(s.Extra, &extra)
	}
	return &dto.SpaceSettingsPayload{
		IssueReportingOpen: s.IssueReportingOpen,
		FinanceEnabled:     s.FinanceEnabled,
		Extra:              extra,
	}
}

func spaceContextPayload(ctx spacectx.Context) dto.SpaceContextResponse {
	resp := dto.SpaceContextResponse{}
	if ctx.Selected != nil {
		p := spacePayload(ctx.Selected)
		resp.SelectedSpace = &p
	}
	if ctx.Settings != nil {
		resp.Settings = settingsPayload(ctx.Settings)
	}
	for _, s := range ctx.Administered {
		resp.UserSpaces = append(resp.UserSpaces, spacePayload(&s))
	}
	return resp
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
