package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kabar-gateway/internal/backend"
	"github.com/noah-isme/kabar-gateway/internal/service"
	"github.com/noah-isme/kabar-gateway/pkg/config"
)

func authEngine(backendURL string, secure bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	client := backend.New(config.BackendConfig{BaseURL: backendURL, Timeout: 5 * time.Second}, nil)
	h := NewAuthHandler(service.NewAuthService(client, nil), config.CookieConfig{
		Name:   testCookieName,
		MaxAge: 24 * time.Hour,
		Secure: secure,
	})

	engine := gin.New()
	auth := engine.Group("/api/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.POST("/register", h.Register)
	auth.POST("/reset-password", h.ResetPassword)
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookieName {
			return cookie
		}
	}
	t.Fatalf("no %q cookie in response", testCookieName)
	return nil
}

func TestLoginSetsHttpOnlyCookieAndOmitsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"secret-tok","user":{"id":"u1","username":"andi","role":"editor","is_active":true}}`)) //nolint:errcheck
	}))
	defer server.Close()

	engine := authEngine(server.URL, false)

	rec := postJSON(t, engine, "/api/auth/login", `{"username":"andi","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	assert.Equal(t, "secret-tok", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.False(t, cookie.Secure)

	assert.NotContains(t, rec.Body.String(), "secret-tok", "token must never appear in the JSON body")
	assert.Contains(t, rec.Body.String(), `"username":"andi"`)
}

func TestLoginSecureCookieInProduction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok"}`)) //nolint:errcheck
	}))
	defer server.Close()

	engine := authEngine(server.URL, true)

	rec := postJSON(t, engine, "/api/auth/login", `{"username":"andi","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sessionCookie(t, rec).Secure)
}

func TestLoginBadCredentialsSetsNoCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid credentials"}`)) //nolint:errcheck
	}))
	defer server.Close()

	engine := authEngine(server.URL, false)

	rec := postJSON(t, engine, "/api/auth/login", `{"username":"andi","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginMissingFields(t *testing.T) {
	engine := authEngine("http://127.0.0.1:0", false)

	rec := postJSON(t, engine, "/api/auth/login", `{"username":"andi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsCookieWithoutBackendCall(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	engine := authEngine(server.URL, false)

	rec := postJSON(t, engine, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
	assert.Zero(t, calls)
}

func TestRegisterWeakPasswordRejected(t *testing.T) {
	engine := authEngine("http://127.0.0.1:0", false)

	rec := postJSON(t, engine, "/api/auth/register",
		`{"username":"andi","email":"andi@example.com","password":"short","confirm_password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 7 characters")
}
