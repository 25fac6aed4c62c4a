package middleware

import (
	"github.com/reporthub-io/reporthub/internal/config"
	"github.com/reporthub-io/reporthub/internal/dto"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const currentUserKey = "current_user"

// AccessTokenCookie carries the access token for browser sessions; API
// clients use the Authorization header instead.
const AccessTokenCookie = "access_token"

// JWTProtected validates the access token from the Authorization header
// or the session cookie.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		TokenLookup: "header:Authorization,cookie:" + AccessTokenCookie,
		AuthScheme:  "Bearer",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// LoadUser resolves the token's subject and session against the store
// on every request. A deactivated account or a revoked session fails
// here immediately, regardless of the token's remaining lifetime.
func LoadUser(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, sessionID, err := tokenIDs(c)
		if err != nil {
			return unauthorized(c)
		}

		user, err := authService.ResolveUser(userID, sessionID)
		if err != nil {
			c.ClearCookie(AccessTokenCookie)
			return unauthorized(c)
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated user for the request, nil when
// no auth middleware ran.
func CurrentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(currentUserKey).(*models.User); ok {
		return user
	}
	return nil
}

// SessionID extracts the sid claim of the request's access token.
func SessionID(c *fiber.Ctx) (uuid.UUID, error) {
	_, sid, err := tokenIDs(c)
	return sid, err
}

func tokenIDs(c *fiber.Ctx) (userID, sessionID uuid.UUID, err error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, uuid.Nil, fiber.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, uuid.Nil, fiber.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)

	userID, err = uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionID, err = uuid.Parse(sid)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, sessionID, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized",
	})
}
