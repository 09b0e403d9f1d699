package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kabar-gateway/internal/models"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

func identityServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/profile", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
}

func TestResolveFlatProfileShape(t *testing.T) {
	server := identityServer(t, http.StatusOK, `{"id":"u1","username":"sari","role":"editor","is_active":true}`)
	defer server.Close()

	svc := NewIdentityService(newTestClient(server.URL), nil)

	profile, err := svc.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, "sari", profile.Username)
	assert.Equal(t, models.RoleEditor, profile.Role)
	assert.True(t, profile.IsActive)
}

func TestResolveWrappedProfileShape(t *testing.T) {
	server := identityServer(t, http.StatusOK, `{"user":{"id":"u2","username":"budi","role":"admin"}}`)
	defer server.Close()

	svc := NewIdentityService(newTestClient(server.URL), nil)

	profile, err := svc.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u2", profile.ID)
	assert.Equal(t, models.RoleAdmin, profile.Role)
	assert.True(t, profile.IsActive, "missing is_active defaults to active")
}

func TestResolveInactiveFlag(t *testing.T) {
	server := identityServer(t, http.StatusOK, `{"id":"u3","username":"tia","role":"user","is_active":false}`)
	defer server.Close()

	svc := NewIdentityService(newTestClient(server.URL), nil)

	profile, err := svc.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, profile.IsActive)
}

func TestResolveEmptyToken(t *testing.T) {
	svc := NewIdentityService(newTestClient("http://127.0.0.1:0"), nil)

	_, err := svc.Resolve(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestResolveRejectedToken(t *testing.T) {
	server := identityServer(t, http.StatusUnauthorized, `{"message":"token expired"}`)
	defer server.Close()

	svc := NewIdentityService(newTestClient(server.URL), nil)

	_, err := svc.Resolve(context.Background(), "stale")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestResolveBackendDown(t *testing.T) {
	server := identityServer(t, http.StatusOK, `{}`)
	server.Close()

	svc := NewIdentityService(newTestClient(server.URL), nil)

	_, err := svc.Resolve(context.Background(), "tok")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBackendUnavailable.Code, appErr.Code)
}

func TestResolveMalformedProfile(t *testing.T) {
	server := identityServer(t, http.StatusOK, `{"hello":"world"}`)
	defer server.Close()

	svc := NewIdentityService(newTestClient(server.URL), nil)

	_, err := svc.Resolve(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBackendUnavailable.Code, appErrors.FromError(err).Code)
}

func TestProfileReturnsNilOnAnyFailure(t *testing.T) {
	server := identityServer(t, http.StatusUnauthorized, `{}`)
	defer server.Close()

	svc := NewIdentityService(newTestClient(server.URL), nil)

	assert.Nil(t, svc.Profile(context.Background(), "stale"))
	assert.Nil(t, svc.Profile(context.Background(), ""))
}
