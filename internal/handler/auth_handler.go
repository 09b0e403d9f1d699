package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kabar-gateway/internal/models"
	"github.com/noah-isme/kabar-gateway/internal/service"
	"github.com/noah-isme/kabar-gateway/pkg/config"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
	"github.com/noah-isme/kabar-gateway/pkg/response"
)

// AuthHandler relays credential flows and owns the token cookie. The token
// only ever reaches the browser as an HttpOnly SameSite=Lax cookie.
type AuthHandler struct {
	service *service.AuthService
	cookie  config.CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login authenticates against the backend and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setTokenCookie(c, res.Token)
	response.JSON(c, http.StatusOK, gin.H{"message": "ok", "user": res.User}, nil)
}

// Logout clears the session cookie. No backend call is made; the backend's
// token semantics are relayed, not owned, by the gateway.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearTokenCookie(c)
	response.JSON(c, http.StatusOK, gin.H{"message": "logged out"}, nil)
}

// Register validates the payload locally before any network call.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// ResetPassword forwards the reset payload to the backend.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	res, err := h.service.ResetPassword(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearTokenCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
