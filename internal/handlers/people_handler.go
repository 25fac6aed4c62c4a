package handlers

import (
	"errors"

	"github.com/reporthub-io/reporthub/internal/dto"
	"github.com/reporthub-io/reporthub/internal/middleware"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PeopleHandler struct {
	peopleService *services.PeopleService
}

func NewPeopleHandler(peopleService *services.PeopleService) *PeopleHandler {
	return &PeopleHandler{peopleService: peopleService}
}

func (h *PeopleHandler) List(c *fiber.Ctx) error {
	users, err := h.peopleService.ListPeople(middleware.CurrentUser(c))
	if err != nil {
		return internalError(c)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userPayload(&users[i]))
	}
	return c.JSON(out)
}

func (h *PeopleHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePersonRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.peopleService.CreatePerson(middleware.CurrentUser(c), services.CreatePersonInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		UserType:  models.UserType(req.UserType),
		OrgSlug:   req.OrgSlug,
	})
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(userPayload(user))
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrPhoneTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrNotOrgAdmin):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrBadUserInput):
		return badRequest(c, "general users need a phone number, other roles need an email")
	default:
		return internalError(c)
	}
}

// SetPassword lets a central admin set the initial password of an email
// account (stand-in for the emailed reset link flow).
func (h *PeopleHandler) SetPassword(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	var req dto.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.peopleService.SetPassword(userID, req.Password); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return notFound(c, err.Error())
		}
		return badRequest(c, err.Error())
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated"})
}
