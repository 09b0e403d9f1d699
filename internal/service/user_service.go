package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/internal/backend"
	"github.com/noah-isme/kabar-gateway/internal/models"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// ManagedUser is an entry of the admin user-management listing.
type ManagedUser struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email,omitempty"`
	Role     models.UserRole `json:"role"`
	IsActive bool            `json:"is_active"`
}

// UserList is the normalised user listing shape.
type UserList struct {
	Items []ManagedUser `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// UserService covers admin-only user management, thin relays over the
// backend's /manage/users endpoints.
type UserService struct {
	client *backend.Client
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(client *backend.Client, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{client: client, logger: logger}
}

// List returns a page of managed users.
func (s *UserService) List(ctx context.Context, token string, page, limit int) (UserList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	list := UserList{Items: []ManagedUser{}, Page: page, Limit: limit}

	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, "/manage/users", query, token, &raw); err != nil {
		return list, err
	}

	var bare []ManagedUser
	if err := json.Unmarshal(raw, &bare); err == nil {
		list.Items = bare
		list.Total = len(bare)
		return list, nil
	}

	var wrapped struct {
		Items []ManagedUser `json:"items"`
		Total int           `json:"total"`
		Page  int           `json:"page"`
		Limit int           `json:"limit"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return list, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "malformed user listing")
	}
	if wrapped.Items != nil {
		list.Items = wrapped.Items
	}
	list.Total = wrapped.Total
	if list.Total == 0 {
		list.Total = len(list.Items)
	}
	if wrapped.Page > 0 {
		list.Page = wrapped.Page
	}
	if wrapped.Limit > 0 {
		list.Limit = wrapped.Limit
	}
	return list, nil
}

// UpdateAccess changes a user's role or active flag.
func (s *UserService) UpdateAccess(ctx context.Context, token, id string, update models.UserAccessUpdate) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	if update.Role == nil && update.IsActive == nil {
		return appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	path := "/manage/users/" + url.PathEscape(id) + "/access"
	return s.client.DoJSON(ctx, http.MethodPut, path, nil, token, update, nil)
}
