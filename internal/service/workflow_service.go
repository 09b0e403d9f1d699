package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/internal/backend"
	"github.com/noah-isme/kabar-gateway/internal/models"
	"github.com/noah-isme/kabar-gateway/internal/proxy"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// WorkflowService drives the editorial lifecycle of a news item. The backend
// is the sole authority over status and needs_approval; every transition is a
// single backend call and callers re-fetch rather than mutate local state.
type WorkflowService struct {
	client *backend.Client
	logger *zap.Logger
}

// NewWorkflowService constructs the service.
func NewWorkflowService(client *backend.Client, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{client: client, logger: logger}
}

// CanTransition is the single capability check the presentation layer uses
// instead of re-deriving role logic ad hoc. It mirrors the transition table:
//
//	submit   author (non-editor)  draft, !needs_approval
//	approve  editor               draft, needs_approval
//	reject   editor               draft, needs_approval
//	publish  editor               draft+!needs_approval, or archived
//	archive  editor or author     published
func CanTransition(profile *models.UserProfile, item *models.NewsItem, action models.TransitionAction) bool {
	if profile == nil || item == nil || !profile.IsActive {
		return false
	}

	switch action {
	case models.ActionSubmit:
		return profile.Role != models.RoleEditor &&
			profile.ID == item.AuthorID &&
			item.Status == models.StatusDraft && !item.NeedsApproval
	case models.ActionApprove, models.ActionReject:
		return profile.Role == models.RoleEditor &&
			item.Status == models.StatusDraft && item.NeedsApproval
	case models.ActionPublish:
		if profile.Role != models.RoleEditor {
			return false
		}
		if item.Status == models.StatusArchived {
			return true
		}
		return item.Status == models.StatusDraft && !item.NeedsApproval
	case models.ActionArchive:
		if item.Status != models.StatusPublished {
			return false
		}
		return profile.Role == models.RoleEditor || profile.ID == item.AuthorID
	}
	return false
}

// Transition invokes a workflow action on the backend and returns the
// canonical item the backend answers with. A reject with a blank reason is
// refused before any network call.
func (s *WorkflowService) Transition(ctx context.Context, token, id string, action models.TransitionAction, reason string) (*models.NewsItem, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "news id is required")
	}

	var body interface{}
	if action == models.ActionReject {
		if strings.TrimSpace(reason) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
		}
		body = models.RejectRequest{Reason: reason}
	}

	var raw json.RawMessage
	path := fmt.Sprintf("/manage/news/%s/%s", url.PathEscape(id), action)
	if err := s.client.PostJSON(ctx, path, token, body, &raw); err != nil {
		s.logger.Warn("transition_failed",
			zap.String("news_id", id),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return nil, err
	}

	item, err := proxy.NormalizeItem(raw)
	if err != nil {
		// Transition landed but the echo was unreadable; callers re-fetch anyway.
		return nil, nil
	}
	return item, nil
}

// Create opens a new draft owned by the caller.
func (s *WorkflowService) Create(ctx context.Context, token string, draft models.NewsDraft) (*models.NewsItem, error) {
	var raw json.RawMessage
	if err := s.client.PostJSON(ctx, "/manage/news", token, draft, &raw); err != nil {
		return nil, err
	}
	return proxy.NormalizeItem(raw)
}

// Update edits the author-editable fields of an existing item.
func (s *WorkflowService) Update(ctx context.Context, token, id string, draft models.NewsDraft) (*models.NewsItem, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "news id is required")
	}
	var raw json.RawMessage
	path := "/manage/news/" + url.PathEscape(id)
	if err := s.client.DoJSON(ctx, http.MethodPut, path, nil, token, draft, &raw); err != nil {
		return nil, err
	}
	return proxy.NormalizeItem(raw)
}

// Drafts lists items awaiting editorial review.
func (s *WorkflowService) Drafts(ctx context.Context, token string, page, limit int) (models.NewsList, error) {
	return s.list(ctx, token, "/manage/news/drafts", page, limit)
}

// Mine lists the caller's own items across all states.
func (s *WorkflowService) Mine(ctx context.Context, token string, page, limit int) (models.NewsList, error) {
	return s.list(ctx, token, "/manage/news/mine", page, limit)
}

func (s *WorkflowService) list(ctx context.Context, token, path string, page, limit int) (models.NewsList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, path, query, token, &raw); err != nil {
		return models.NewsList{Items: []models.NewsItem{}, Page: page, Limit: limit}, err
	}
	return proxy.NormalizeList(raw, page, limit)
}
