package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/reporthub-io/reporthub/internal/access"
	"github.com/reporthub-io/reporthub/internal/config"
	"github.com/reporthub-io/reporthub/internal/database"
	"github.com/reporthub-io/reporthub/internal/dto"
	"github.com/reporthub-io/reporthub/internal/handlers"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/reporthub-io/reporthub/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateCoreOn(db))
	return db
}

func newAuthApp(t *testing.T, db *gorm.DB) (*fiber.App, *services.AuthService) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
	}
	svc := services.NewAuthService(db, cfg)
	handler := handlers.NewAuthHandler(svc, access.NewRouter(), cfg)

	app := fiber.New()
	app.Post("/api/auth/login/phone", handler.PhoneLogin)
	app.Post("/api/auth/login/email", handler.EmailLogin)
	app.Post("/api/auth/refresh", handler.Refresh)
	return app, svc
}

func strPtr(s string) *string { return &s }

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, []byte) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func TestPhoneLoginEndpoint(t *testing.T) {
	db := newTestDB(t)
	app, _ := newAuthApp(t, db)
	require.NoError(t, db.Create(&models.User{
		Phone:      strPtr("+15551230000"),
		AuthMethod: models.AuthMethodPhone,
		UserType:   models.UserTypeGeneralUser,
		IsActive:   true,
	}).Error)

	status, body := postJSON(t, app, "/api/auth/login/phone", dto.PhoneLoginRequest{Phone: "+15551230000"})
	require.Equal(t, fiber.StatusOK, status)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, access.DestDefaultDashboard, resp.RedirectTo)
	require.Equal(t, string(models.UserTypeGeneralUser), resp.User.UserType)
}

func TestEmailLoginRoutesByRole(t *testing.T) {
	db := newTestDB(t)
	app, _ := newAuthApp(t, db)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Email:        strPtr("central@example.com"),
		PasswordHash: string(hash),
		AuthMethod:   models.AuthMethodEmail,
		UserType:     models.UserTypeCentralAdmin,
		IsActive:     true,
	}).Error)

	status, body := postJSON(t, app, "/api/auth/login/email", dto.EmailLoginRequest{
		Email: "central@example.com", Password: "s3cret-pass",
	})
	require.Equal(t, fiber.StatusOK, status)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Equal(t, access.DestCentralAdminDashboard, resp.RedirectTo)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	app, _ := newAuthApp(t, db)

	status, _ := postJSON(t, app, "/api/auth/login/phone", dto.PhoneLoginRequest{Phone: "+15559990000"})
	require.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = postJSON(t, app, "/api/auth/login/email", dto.EmailLoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	require.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLoginRefusesUnroutableRole(t *testing.T) {
	db := newTestDB(t)
	app, _ := newAuthApp(t, db)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Email:        strPtr("ghost@example.com"),
		PasswordHash: string(hash),
		AuthMethod:   models.AuthMethodEmail,
		UserType:     models.UserType("ghost"),
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)

	status, body := postJSON(t, app, "/api/auth/login/email", dto.EmailLoginRequest{
		Email: "ghost@example.com", Password: "s3cret-pass",
	})
	require.Equal(t, fiber.StatusForbidden, status)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Equal(t, access.NoPermissionsMessage, resp.Message)

	// The login opened a session but the router refusal closed it again.
	var live int64
	require.NoError(t, db.Model(&models.Session{}).
		Where("user_id = ? AND revoked = ?", user.ID, false).
		Count(&live).Error)
	require.Zero(t, live)
}

func TestRefreshEndpointRotates(t *testing.T) {
	db := newTestDB(t)
	app, svc := newAuthApp(t, db)
	require.NoError(t, db.Create(&models.User{
		Phone:      strPtr("+15551240000"),
		AuthMethod: models.AuthMethodPhone,
		UserType:   models.UserTypeGeneralUser,
		IsActive:   true,
	}).Error)

	_, pair, err := svc.Login(services.Credentials{Kind: services.CredentialPhone, Phone: "+15551240000"})
	require.NoError(t, err)

	status, body := postJSON(t, app, "/api/auth/refresh", dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.Equal(t, fiber.StatusOK, status)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEqual(t, pair.RefreshToken, resp.RefreshToken)

	status, _ = postJSON(t, app, "/api/auth/refresh", dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.Equal(t, fiber.StatusUnauthorized, status)
}
