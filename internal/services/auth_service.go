package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/reporthub-io/reporthub/internal/config"
	"github.com/reporthub-io/reporthub/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials covers every authentication failure: no
	// match, bad password, wrong method/role pairing, ambiguous match.
	// Callers never learn which, so accounts cannot be enumerated.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrUserNotFound       = errors.New("user not found")
)

// CredentialKind tags the credential variant presented at login.
type CredentialKind string

const (
	CredentialPhone CredentialKind = "phone"
	CredentialEmail CredentialKind = "email"
)

// Credentials is the tagged union the strategy selector dispatches on.
type Credentials struct {
	Kind     CredentialKind
	Phone    string
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Authenticate verifies the presented credentials and returns the
// matching active user. Phone credentials are passwordless and only
// valid for general users; email credentials require a usable password
// and are refused for general users.
func (s *AuthService) Authenticate(creds Credentials) (*models.User, error) {
	switch creds.Kind {
	case CredentialPhone:
		return s.authenticatePhone(creds.Phone)
	case CredentialEmail:
		return s.authenticateEmail(creds.Email, creds.Password)
	default:
		return nil, ErrInvalidCredentials
	}
}

func (s *AuthService) authenticatePhone(phone string) (*models.User, error) {
	if phone == "" {
		return nil, ErrInvalidCredentials
	}

	var users []models.User
	err := s.db.
		Where("phone = ? AND auth_method = ? AND user_type = ? AND is_active = ?",
			phone, models.AuthMethodPhone, models.UserTypeGeneralUser, true).
		Limit(2).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("phone lookup failed: %w", err)
	}
	// Anything but exactly one match fails closed.
	if len(users) != 1 {
		return nil, ErrInvalidCredentials
	}
	return &users[0], nil
}

func (s *AuthService) authenticateEmail(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := s.db.
		Where("email = ? AND auth_method = ? AND is_active = ?",
			email, models.AuthMethodEmail, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("email lookup failed: %w", err)
	}

	// General users authenticate by phone only.
	if user.UserType == models.UserTypeGeneralUser {
		return nil, ErrInvalidCredentials
	}
	// An empty hash means the account is locked out of email login.
	if !user.HasUsablePassword() {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Login authenticates and opens a session, returning the token pair.
func (s *AuthService) Login(creds Credentials) (*models.User, *TokenPair, error) {
	user, err := s.Authenticate(creds)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.openSession(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// ResolveUser re-validates an access token's subject and session on
// every request. Deactivated accounts and revoked sessions lose access
// immediately, not at token expiry.
func (s *AuthService) ResolveUser(userID, sessionID uuid.UUID) (*models.User, error) {
	var session models.Session
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, ErrSessionRevoked
	}
	if session.Revoked || time.Now().After(session.ExpiresAt) || session.UserID != userID {
		return nil, ErrSessionRevoked
	}

	var user models.User
	if err := s.db.First(&user, "id = ? AND is_active = ?", userID, true).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// Refresh rotates the session: the presented refresh token's session is
// revoked and a fresh one is opened.
func (s *AuthService) Refresh(refreshToken string) (*models.User, *TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	var session models.Session
	if err := s.db.Where("refresh_token_hash = ? AND revoked = ?", tokenHash, false).First(&session).Error; err != nil {
		return nil, nil, ErrInvalidToken
	}
	if time.Now().After(session.ExpiresAt) {
		s.db.Model(&session).Update("revoked", true)
		return nil, nil, ErrInvalidToken
	}

	if err := s.db.Model(&session).Update("revoked", true).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to revoke session: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ? AND is_active = ?", session.UserID, true).Error; err != nil {
		return nil, nil, ErrUserNotFound
	}

	pair, err := s.openSession(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Logout revokes the session behind the presented refresh token.
func (s *AuthService) Logout(refreshToken string) error {
	tokenHash := hashToken(refreshToken)
	return s.db.Model(&models.Session{}).
		Where("refresh_token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// ForceLogout revokes every session of the user. Used by the role gate
// and the role router when an account must not stay signed in.
func (s *AuthService) ForceLogout(userID uuid.UUID) error {
	return s.db.Model(&models.Session{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func (s *AuthService) openSession(user *models.User) (*TokenPair, error) {
	rawToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	session := models.Session{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: hashToken(rawToken),
		ExpiresAt:        time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	accessToken, err := s.generateAccessToken(user, session.ID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: rawToken}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, sessionID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub":         user.ID.String(),
		"sid":         sessionID.String(),
		"role":        string(user.UserType),
		"auth_method": string(user.AuthMethod),
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
