package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/raven2t2/importiq-backend/v1/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering with an existing email
	ErrEmailTaken = errors.New("email is already registered")
	// ErrSessionExpired is returned when a session token is past its expiry
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionNotFound is returned for unknown session tokens
	ErrSessionNotFound = errors.New("session not found")
)

// AuthService handles registration, login, sessions and password resets
type AuthService struct {
	db         *gorm.DB
	jwtSecret  []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewAuthService creates a new auth service. jwtSecret signs password-reset
// tokens; session tokens are random and stored server-side.
func NewAuthService(db *gorm.DB, jwtSecret []byte, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		db:         db,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		resetTTL:   models.ResetTokenTTL,
	}
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(req.Password) < models.MinPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", models.MinPasswordLen)
	}
	if strings.TrimSpace(req.FullName) == "" || len(req.FullName) > models.MaxNameLength {
		return nil, fmt.Errorf("full name is required and must be at most %d characters", models.MaxNameLength)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       "usr_" + uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("User registered", "userID", user.UserID)
	return userResponse(&user), nil
}

// Login verifies credentials and issues a bearer session token
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := models.Session{
		SessionID: "ses_" + uuid.New().String(),
		UserID:    user.UserID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
	}

	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		User:      userResponse(&user),
	}, nil
}

// Logout deletes the session for the given token. Unknown tokens are not an
// error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ValidateSession resolves a bearer token to its user, enforcing expiry.
// Expired sessions are deleted on sight.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).First(&session, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.db.WithContext(ctx).Delete(&session).Error; err != nil {
			slog.Warn("Failed to delete expired session", "sessionID", session.SessionID, "error", err)
		}
		return nil, ErrSessionExpired
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "user_id = ?", session.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	return &user, nil
}

// IssueResetToken creates a signed, short-lived password-reset token for the
// account with the given email. The token is a JWT so no reset state is
// stored server-side.
func (s *AuthService) IssueResetToken(ctx context.Context, email string) (*models.PasswordResetResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.resetTTL)
	claims := jwt.MapClaims{
		"sub":     user.UserID,
		"purpose": "password_reset",
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().UTC().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign reset token: %w", err)
	}

	return &models.PasswordResetResponse{
		ResetToken: signed,
		ExpiresAt:  expiresAt.Format(time.RFC3339),
	}, nil
}

// ConfirmReset validates a reset token and sets the new password. All of the
// user's sessions are revoked.
func (s *AuthService) ConfirmReset(ctx context.Context, resetToken, newPassword string) error {
	if len(newPassword) < models.MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", models.MinPasswordLen)
	}

	parsed, err := jwt.Parse(resetToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return fmt.Errorf("invalid or expired reset token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "password_reset" {
		return fmt.Errorf("invalid reset token claims")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return fmt.Errorf("invalid reset token subject")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to start transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	result := tx.Model(&models.User{}).Where("user_id = ?", userID).Update("password_hash", string(hash))
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return fmt.Errorf("user not found")
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("Password reset completed", "userID", userID)
	return nil
}

func userResponse(user *models.User) *models.UserResponse {
	return &models.UserResponse{
		UserID:    user.UserID,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > models.MaxEmailLength {
		return fmt.Errorf("email is required and must be at most %d characters", models.MaxEmailLength)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
