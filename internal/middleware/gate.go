package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/internal/models"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// ContextProfileKey is the gin context key holding the resolved profile.
const ContextProfileKey = "currentProfile"

// LoginPath is where unauthenticated navigation is sent.
const LoginPath = "/auth/login"

// HomePath is the authenticated landing page and the silent-downgrade target.
const HomePath = "/home"

// ProfileResolver is the identity lookup the gate depends on.
type ProfileResolver interface {
	Resolve(ctx context.Context, token string) (*models.UserProfile, error)
}

var publicPaths = map[string]struct{}{
	"/":              {},
	"/auth/login":    {},
	"/auth/register": {},
	"/auth/forgot":   {},
	"/auth/reset":    {},
}

var bypassPrefixes = []string{"/api/", "/static/", "/metrics", "/healthz"}

// AccessGate is the per-request decision function evaluated before any page
// logic runs. Precedence: asset/API bypass, public set, token requirement
// with next-preserving login redirect, then role sub-gates for the admin
// prefix. Ambiguity (network errors, invalid tokens) fails closed.
func AccessGate(resolver ProfileResolver, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if bypassed(path) {
			c.Next()
			return
		}
		if _, ok := publicPaths[path]; ok {
			c.Next()
			return
		}

		token := ""
		if cookie, err := c.Request.Cookie(cookieName); err == nil {
			token = cookie.Value
		}
		if token == "" {
			redirectToLogin(c)
			return
		}

		if strings.HasPrefix(path, "/admin") {
			profile, err := resolver.Resolve(c.Request.Context(), token)
			if err != nil {
				var appErr *appErrors.Error
				if errors.As(err, &appErr) && appErr.Status == http.StatusUnauthorized {
					// Invalid or expired token: back through login.
					redirectToLogin(c)
					return
				}
				// Backend unreachable while deciding access: fail closed.
				logger.Warn("access_gate_fail_closed", zap.String("path", path), zap.Error(err))
				redirectHome(c)
				return
			}

			allowed := profile.Role.CanManageContent()
			if strings.HasPrefix(path, "/admin/users") {
				allowed = profile.Role.CanManageUsers()
			}
			if !allowed || !profile.IsActive {
				// Silent downgrade: restricted areas are not revealed to
				// authenticated users lacking the role.
				redirectHome(c)
				return
			}

			c.Set(ContextProfileKey, profile)
		}

		c.Next()
	}
}

// ProfileFromContext returns the profile the gate resolved, if any.
func ProfileFromContext(c *gin.Context) *models.UserProfile {
	value, exists := c.Get(ContextProfileKey)
	if !exists {
		return nil
	}
	profile, ok := value.(*models.UserProfile)
	if !ok {
		return nil
	}
	return profile
}

func bypassed(path string) bool {
	for _, prefix := range bypassPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return strings.HasSuffix(path, ".ico")
}

func redirectToLogin(c *gin.Context) {
	next := c.Request.URL.Path
	if raw := c.Request.URL.RawQuery; raw != "" {
		next += "?" + raw
	}
	c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(next))
	c.Abort()
}

func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, HomePath)
	c.Abort()
}
