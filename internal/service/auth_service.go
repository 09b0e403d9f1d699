package service

import (
	"context"
	"encoding/json"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/internal/backend"
	"github.com/noah-isme/kabar-gateway/internal/models"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// AuthService relays credential flows to the backend. The gateway holds no
// user store and never hashes a password; the only local responsibility is
// fast validation and the token cookie, which the handler layer owns.
type AuthService struct {
	client   *backend.Client
	logger   *zap.Logger
	validate *validator.Validate
}

// NewAuthService constructs the service.
func NewAuthService(client *backend.Client, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := validator.New()
	// Model structs carry gin binding tags; reuse them here.
	validate.SetTagName("binding")
	return &AuthService{
		client:   client,
		logger:   logger,
		validate: validate,
	}
}

// Login forwards credentials and returns the backend's token and user.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var res models.LoginResponse
	if err := s.client.PostJSON(ctx, "/auth/login", "", req, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, appErrors.Clone(appErrors.ErrBackendUnavailable, "login response missing token")
	}
	return &res, nil
}

// Register validates the payload locally, the password policy included, and
// only then forwards to the backend. No partial side effect occurs on a
// validation failure.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (json.RawMessage, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if err := ValidatePassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	payload := map[string]string{
		"username": req.Username,
		"email":    req.Email,
		"password": req.Password,
	}
	var res json.RawMessage
	if err := s.client.PostJSON(ctx, "/auth/register", "", payload, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ResetPassword forwards the reset payload verbatim.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (json.RawMessage, error) {
	var res json.RawMessage
	if err := s.client.PostJSON(ctx, "/auth/reset-password", "", req, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ValidatePassword enforces the registration password policy: at least 7
// characters, with lower case, upper case, a digit and a special character,
// and a matching confirmation. The first violated rule is reported.
func ValidatePassword(password, confirm string) error {
	if len(password) < 7 {
		return appErrors.Clone(appErrors.ErrValidation, "password must be at least 7 characters")
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasLower || !hasUpper {
		return appErrors.Clone(appErrors.ErrValidation, "password must contain both lower and upper case letters")
	}
	if !hasDigit {
		return appErrors.Clone(appErrors.ErrValidation, "password must contain at least one digit")
	}
	if !hasSpecial {
		return appErrors.Clone(appErrors.ErrValidation, "password must contain at least one special character")
	}
	if confirm != password {
		return appErrors.Clone(appErrors.ErrValidation, "password confirmation does not match")
	}
	return nil
}
