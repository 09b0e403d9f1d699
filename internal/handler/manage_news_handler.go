package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kabar-gateway/internal/models"
	"github.com/noah-isme/kabar-gateway/internal/proxy"
	"github.com/noah-isme/kabar-gateway/internal/service"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
	"github.com/noah-isme/kabar-gateway/pkg/response"
)

// ManageNewsHandler exposes the editorial workflow over the API namespace.
// Role enforcement for these endpoints lives at the backend; the handler's
// own responsibilities are fast validation and the token relay.
type ManageNewsHandler struct {
	workflow   *service.WorkflowService
	cookieName string
}

// NewManageNewsHandler creates a new handler.
func NewManageNewsHandler(workflow *service.WorkflowService, cookieName string) *ManageNewsHandler {
	return &ManageNewsHandler{workflow: workflow, cookieName: cookieName}
}

// Create opens a new draft.
func (h *ManageNewsHandler) Create(c *gin.Context) {
	token := h.token(c)
	if token == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var draft models.NewsDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid draft payload"))
		return
	}

	item, err := h.workflow.Create(c.Request.Context(), token, draft)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// Update edits an existing item's author-editable fields.
func (h *ManageNewsHandler) Update(c *gin.Context) {
	token := h.token(c)
	if token == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var draft models.NewsDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid draft payload"))
		return
	}

	item, err := h.workflow.Update(c.Request.Context(), token, c.Param("id"), draft)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Drafts lists items pending review.
func (h *ManageNewsHandler) Drafts(c *gin.Context) {
	h.list(c, h.workflow.Drafts)
}

// Mine lists the caller's own items.
func (h *ManageNewsHandler) Mine(c *gin.Context) {
	h.list(c, h.workflow.Mine)
}

// Transition runs one workflow step on an item. The reject reason is checked
// before any network traffic; everything else is decided by the backend, the
// sole authority over the item's state.
func (h *ManageNewsHandler) Transition(c *gin.Context) {
	token := h.token(c)
	if token == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	action, ok := models.ParseAction(c.Param("action"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown workflow action"))
		return
	}

	reason := ""
	if action == models.ActionReject {
		var req models.RejectRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			reason = req.Reason
		}
	}

	item, err := h.workflow.Transition(c.Request.Context(), token, c.Param("id"), action, reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	if item == nil {
		response.NoContent(c)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

func (h *ManageNewsHandler) list(c *gin.Context, fetch func(ctx context.Context, token string, page, limit int) (models.NewsList, error)) {
	token := h.token(c)
	if token == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	list, err := fetch(c.Request.Context(), token, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, list.Items, &models.Pagination{
		Page:  list.Page,
		Limit: list.Limit,
		Total: list.Total,
	})
}

func (h *ManageNewsHandler) token(c *gin.Context) string {
	return proxy.BearerToken(c.Request, h.cookieName)
}
