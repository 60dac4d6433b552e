package identity

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"habitflow/internal/config"
	"habitflow/internal/models"
	"habitflow/internal/repository"
	"habitflow/pkg/logger"
)

// Coded errors for authentication failures. The Code strings are surfaced
// verbatim to clients so they can branch on the reason.
var (
	ErrEmailInUse     = &Error{Code: "auth/email-already-in-use", Message: "This email is already registered"}
	ErrInvalidEmail   = &Error{Code: "auth/invalid-email", Message: "Invalid email address"}
	ErrWeakPassword   = &Error{Code: "auth/weak-password", Message: "Password is too weak"}
	ErrUserNotFound   = &Error{Code: "auth/user-not-found", Message: "No account found with this email"}
	ErrWrongPassword  = &Error{Code: "auth/wrong-password", Message: "Incorrect password"}
	ErrTooManyRetries = &Error{Code: "auth/too-many-requests", Message: "Too many attempts. Try again later"}
	ErrNetwork        = &Error{Code: "auth/network-request-failed", Message: "Network error. Check your connection"}
	ErrUnknown        = &Error{Code: "auth/unknown", Message: "Authentication failed"}
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// Provider issues and verifies credentials backed by the users table.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

// Register creates an account and returns the user with a signed token.
func (p *Provider) Register(ctx context.Context, email, password, displayName string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < config.Get().MinPasswordLength {
		return nil, "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error(ctx, "Failed to hash password", "error", err)
		return nil, "", ErrUnknown
	}

	user := &models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
	}
	if err := repository.CreateUser(ctx, user); err != nil {
		return nil, "", classify(ctx, err)
	}

	token, err := p.issueToken(user.ID)
	if err != nil {
		logger.Error(ctx, "Failed to sign token", "error", err)
		return nil, "", ErrUnknown
	}
	logger.Info(ctx, "User registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user with a signed token.
func (p *Provider) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := repository.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", classify(ctx, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrWrongPassword
	}

	token, err := p.issueToken(user.ID)
	if err != nil {
		logger.Error(ctx, "Failed to sign token", "error", err)
		return nil, "", ErrUnknown
	}
	return &user, token, nil
}

// ResetPassword replaces the password for an existing account. A real
// deployment would gate this behind an emailed link; here the caller proves
// ownership with the old password.
func (p *Provider) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, _, err := p.Login(ctx, email, oldPassword)
	if err != nil {
		return err
	}
	if len(newPassword) < config.Get().MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error(ctx, "Failed to hash password", "error", err)
		return ErrUnknown
	}
	if err := repository.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
		return classify(ctx, err)
	}
	logger.Info(ctx, "Password reset", "user_id", user.ID)
	return nil
}

func (p *Provider) issueToken(userID string) (string, error) {
	cfg := config.Get()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.JWTExpiryHours) * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func classify(ctx context.Context, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == "23505" {
		return ErrEmailInUse
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, sql.ErrConnDone) {
		return ErrNetwork
	}
	logger.Error(ctx, "Auth storage error", "error", err)
	return ErrUnknown
}
