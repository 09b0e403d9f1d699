package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/internal/backend"
	"github.com/noah-isme/kabar-gateway/internal/models"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// IdentityService resolves the caller's profile from a bearer token by asking
// the backend. Results are never cached across requests.
type IdentityService struct {
	client *backend.Client
	logger *zap.Logger
}

// NewIdentityService constructs the resolver.
func NewIdentityService(client *backend.Client, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{client: client, logger: logger}
}

// Resolve asks the backend profile endpoint who the token belongs to.
// A rejected token yields ErrUnauthorized; an unreachable or misbehaving
// backend yields ErrBackendUnavailable. Callers that gate on the distinction
// (login redirect vs fail-closed) inspect the error; everyone else should use
// Profile.
func (s *IdentityService) Resolve(ctx context.Context, token string) (*models.UserProfile, error) {
	if token == "" {
		return nil, appErrors.ErrUnauthorized
	}

	resp, err := s.client.Do(ctx, http.MethodGet, "/user/profile", nil, nil, "", token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, appErrors.ErrUnauthorized
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "read profile response")
	}

	profile, err := decodeProfile(raw)
	if err != nil {
		s.logger.Warn("profile_decode_failed", zap.Error(err))
		return nil, err
	}
	return profile, nil
}

// Profile is the tolerant variant of Resolve: it returns nil on any failure
// and never an error. Matches the resolver contract the page loaders use.
func (s *IdentityService) Profile(ctx context.Context, token string) *models.UserProfile {
	profile, err := s.Resolve(ctx, token)
	if err != nil {
		return nil
	}
	return profile
}

// The backend has answered with both flat and {user:{...}} shapes over time.
func decodeProfile(raw []byte) (*models.UserProfile, error) {
	var payload struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
		IsActive *bool  `json:"is_active"`
		User     *struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
			IsActive *bool  `json:"is_active"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "malformed profile payload")
	}

	id, username, role, active := payload.ID, payload.Username, payload.Role, payload.IsActive
	if role == "" && payload.User != nil {
		id, username, role, active = payload.User.ID, payload.User.Username, payload.User.Role, payload.User.IsActive
	}
	if role == "" {
		return nil, appErrors.Clone(appErrors.ErrBackendUnavailable, "profile payload missing role")
	}

	isActive := true
	if active != nil {
		isActive = *active
	}
	return &models.UserProfile{
		ID:       id,
		Username: username,
		Role:     models.ParseRole(role),
		IsActive: isActive,
	}, nil
}
