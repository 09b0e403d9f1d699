package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kabar-gateway/internal/proxy"
	"github.com/noah-isme/kabar-gateway/internal/service"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
	"github.com/noah-isme/kabar-gateway/pkg/response"
)

// UploadHandler accepts an image upload, validates it, and forwards it to
// the backend store.
type UploadHandler struct {
	service    *service.UploadService
	cookieName string
}

// NewUploadHandler creates a new handler.
func NewUploadHandler(svc *service.UploadService, cookieName string) *UploadHandler {
	return &UploadHandler{service: svc, cookieName: cookieName}
}

// Upload handles POST /api/manage/upload.
func (h *UploadHandler) Upload(c *gin.Context) {
	token := proxy.BearerToken(c.Request, h.cookieName)
	if token == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no file uploaded"))
		return
	}

	result, err := h.service.Forward(c.Request.Context(), token, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
