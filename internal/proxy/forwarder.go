package proxy

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/internal/backend"
)

// Forwarder relays browser-originated API requests to the backend, attaching
// derived auth headers. It is pure plumbing, but the header derivation
// precedence is a contract the access gate and workflow engine rely on.
type Forwarder struct {
	client     *backend.Client
	cookieName string
	logger     *zap.Logger
}

// NewForwarder builds a forwarder bound to the backend client.
func NewForwarder(client *backend.Client, cookieName string, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{client: client, cookieName: cookieName, logger: logger}
}

// BearerToken extracts the effective auth token for a request. An explicit
// Authorization header wins over the token cookie.
func BearerToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Handler returns a gin handler forwarding to a fixed backend path.
func (f *Forwarder) Handler(targetPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		f.Forward(c, targetPath)
	}
}

// HandlerFunc returns a gin handler whose target path depends on the route
// parameters, e.g. /manage/news/{id}/publish.
func (f *Forwarder) HandlerFunc(target func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		f.Forward(c, target(c))
	}
}

// Forward relays the inbound request to targetPath on the backend and writes
// the backend's status and body back unchanged. Header derivation:
//   - inbound Authorization forwarded verbatim;
//   - else a token cookie is synthesized into Authorization: Bearer <token>;
//   - x-access-token passed through verbatim when present.
func (f *Forwarder) Forward(c *gin.Context, targetPath string) {
	header := http.Header{}

	if auth := c.GetHeader("Authorization"); auth != "" {
		header.Set("Authorization", auth)
	} else if cookie, err := c.Request.Cookie(f.cookieName); err == nil && cookie.Value != "" {
		header.Set("Authorization", "Bearer "+cookie.Value)
	}
	if legacy := c.GetHeader("x-access-token"); legacy != "" {
		header.Set("x-access-token", legacy)
	}

	var body io.Reader
	method := c.Request.Method
	if method != http.MethodGet && method != http.MethodDelete {
		body = c.Request.Body
		if contentType := c.GetHeader("Content-Type"); contentType != "" {
			header.Set("Content-Type", contentType)
		}
	}

	resp, err := f.client.Forward(c.Request.Context(), method, targetPath, c.Request.URL.Query(), body, header)
	if err != nil {
		f.logger.Warn("proxy_forward_failed",
			zap.String("method", method),
			zap.String("target", targetPath),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "backend unreachable"})
		return
	}
	defer resp.Body.Close() //nolint:errcheck

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.DataFromReader(resp.StatusCode, resp.ContentLength, contentType, resp.Body, nil)
}
