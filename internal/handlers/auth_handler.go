package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/reporthub-io/reporthub/internal/access"
	"github.com/reporthub-io/reporthub/internal/config"
	"github.com/reporthub-io/reporthub/internal/dto"
	"github.com/reporthub-io/reporthub/internal/middleware"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	router      *access.Router
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, router *access.Router, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, router: router, cfg: cfg}
}

// PhoneLogin is the passwordless path for general users.
func (h *AuthHandler) PhoneLogin(c *fiber.Ctx) error {
	var req dto.PhoneLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	return h.login(c, services.Credentials{
		Kind:  services.CredentialPhone,
		Phone: req.Phone,
	})
}

// EmailLogin is the email + password path for staff roles.
func (h *AuthHandler) EmailLogin(c *fiber.Ctx) error {
	var req dto.EmailLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	return h.login(c, services.Credentials{
		Kind:     services.CredentialEmail,
		Email:    req.Email,
		Password: req.Password,
	})
}

func (h *AuthHandler) login(c *fiber.Ctx, creds services.Credentials) error {
	user, pair, err := h.authService.Login(creds)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid credentials",
			})
		}
		return internalError(c)
	}

	dest, ok := h.router.Resolve(user)
	if !ok {
		// Account matches no role route: configuration anomaly, never
		// leave it in an authenticated-but-unrouted state.
		if err := h.authService.ForceLogout(user.ID); err != nil {
			slog.Error("forced logout failed", "error", err, "user_id", user.ID.String())
		}
		slog.Warn("login refused, no role route", "user_id", user.ID.String(), "role", string(user.UserType))
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: access.NoPermissionsMessage,
		})
	}

	h.setSessionCookie(c, pair.AccessToken)
	return c.JSON(dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		RedirectTo:   dest,
		User:         userPayload(user),
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, pair, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired refresh token",
			})
		}
		return internalError(c)
	}

	dest, _ := h.router.Resolve(user)
	h.setSessionCookie(c, pair.AccessToken)
	return c.JSON(dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		RedirectTo:   dest,
		User:         userPayload(user),
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	// Body is optional for cookie-based sessions.
	_ = c.BodyParser(&req)

	if req.RefreshToken != "" {
		if err := h.authService.Logout(req.RefreshToken); err != nil {
			return internalError(c)
		}
	} else if user := middleware.CurrentUser(c); user != nil {
		if err := h.authService.ForceLogout(user.ID); err != nil {
			return internalError(c)
		}
	}

	c.ClearCookie(middleware.AccessTokenCookie)
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

// Whoami reports the authenticated user and their resolved destination.
// The front end uses it to bounce already-logged-in users away from the
// login page.
func (h *AuthHandler) Whoami(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	dest, ok := h.router.Resolve(user)
	if !ok {
		if err := h.authService.ForceLogout(user.ID); err != nil {
			slog.Error("forced logout failed", "error", err, "user_id", user.ID.String())
		}
		c.ClearCookie(middleware.AccessTokenCookie)
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: access.NoPermissionsMessage,
		})
	}

	return c.JSON(fiber.Map{
		"user":        userPayload(user),
		"redirect_to": dest,
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, accessToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Expires:  time.Now().Add(h.cfg.JWTAccessExpiry),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: "Lax",
	})
}

func userPayload(user *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:       user.ID,
		FullName: user.FullName(),
		UserType: string(user.UserType),
		IsActive: user.IsActive,
	}
	if user.Email != nil {
		resp.Email = *user.Email
	}
	if user.Phone != nil {
		resp.Phone = *user.Phone
	}
	return resp
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
