package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/validation"
	"github.com/fitforge/fitforge-web/pkg/courseapi"
	apperrors "github.com/fitforge/fitforge-web/pkg/errors"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthService forwards credentials to the course API. It holds no
// credentials of its own; admin logins are checked by the API too.
type AuthService struct {
	api      CourseAPI
	validate *validator.Validate

	// legacyAdminToken replaces the token of a successful admin login. Older
	// API deployments only accept this literal on their admin endpoints.
	legacyAdminToken string
}

// NewAuthService creates a new auth service instance. legacyAdminToken may be empty.
func NewAuthService(api CourseAPI, legacyAdminToken string) *AuthService {
	return &AuthService{api: api, validate: validation.New(), legacyAdminToken: legacyAdminToken}
}

var errInvalidAdminCredentials = apperrors.InvalidInputError("admin login", "Invalid admin credentials")

// Signup registers the account and returns the token for auto-login
func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", apperrors.InvalidInputError("signup", validation.Summary(err))
	}

	resp, err := s.api.Signup(ctx, *req)
	if err != nil {
		logger.Info("Signup rejected", zap.String("username", req.Username), zap.Error(err))
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: signup returned no token", courseapi.ErrUnexpectedResponse)
	}

	logger.Info("Account created", zap.String("username", req.Username), zap.String("role", req.Role))
	return resp.Token, nil
}

// Login exchanges email and password for a token
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", apperrors.InvalidInputError("login", validation.Summary(err))
	}

	resp, err := s.api.Login(ctx, *req)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: login returned no token", courseapi.ErrUnexpectedResponse)
	}
	return resp.Token, nil
}

// AdminLogin exchanges admin credentials for a token. Any rejection by the
// API reads "Invalid admin credentials"; some deployments answer bad
// credentials with a 500.
func (s *AuthService) AdminLogin(ctx context.Context, req *models.AdminLoginRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", errInvalidAdminCredentials
	}

	resp, err := s.api.AdminLogin(ctx, *req)
	if err != nil {
		logger.Warn("Admin login rejected", zap.String("username", req.Username), zap.Error(err))
		var apiErr *courseapi.APIError
		if errors.As(err, &apiErr) {
			return "", errInvalidAdminCredentials
		}
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: admin login returned no token", courseapi.ErrUnexpectedResponse)
	}

	logger.Info("Admin logged in", zap.String("username", req.Username))
	if s.legacyAdminToken != "" {
		return s.legacyAdminToken, nil
	}
	return resp.Token, nil
}
