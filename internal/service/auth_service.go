package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"myblog/internal/models"
	"myblog/internal/repository"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgCredentialsRequired = "All fields are required!"
	msgEmailRegistered     = "Email already registered!"
	msgPasswordTooLong     = "Password must be at most 72 bytes!"
	msgInvalidEmail        = "Please enter a valid email address!"
)

// AuthService handles user auth logic
type AuthService struct {
	authRepo repository.Authorization
}

func NewAuthService(repo repository.Authorization) *AuthService {
	return &AuthService{authRepo: repo}
}

// SignUp hashes password and creates a new user. Uniqueness of the email is
// left to the store, which rejects a duplicate atomically.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if err := validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return models.User{}, newValidationError(credentialsMessage(err), err)
	}
	hash, err := hashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.User{}, newValidationError(msgPasswordTooLong, err)
		}
		return models.User{}, newValidationError(msgCredentialsRequired, err)
	}

	u, err := s.authRepo.Create(ctx, models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.User{}, newValidationError(msgEmailRegistered, ErrEmailTaken)
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate validates credentials and returns the matching user.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.authRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.User{}, ErrInvalidCredentials
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return *u, nil
}

// credentialsMessage reports a missing field before a malformed email.
func credentialsMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgCredentialsRequired
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return msgCredentialsRequired
		}
	}
	return msgInvalidEmail
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
