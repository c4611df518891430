package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/free4fun/carbon-codex/config"
	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/repositories"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	EnsureAdmin(ctx context.Context, email, password string) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewUnauthorizedError("invalid credentials")
		}
		return nil, errs.NewDatabaseError("get", "user", err)
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errs.NewUnauthorizedError("invalid credentials")
	}

	token, err := GenerateToken(user)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("sign token", err)
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("get", "user", err)
	}
	return user, nil
}

// EnsureAdmin creates the admin account or resets its password.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errs.NewInvalidFieldError("email", "admin email and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("hash password", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hashed), IsAdmin: true}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, errs.NewDatabaseError("save", "user", err)
	}
	return user, nil
}

// GenerateToken signs an HS256 session token for the user.
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"exp":      now.Add(config.JWTExpiration).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret)
}
