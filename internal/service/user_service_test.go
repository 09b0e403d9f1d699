package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kabar-gateway/internal/models"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

func TestUserListBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manage/users", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"u1","username":"andi","role":"user","is_active":true}]`)) //nolint:errcheck
	}))
	defer server.Close()

	svc := NewUserService(newTestClient(server.URL), nil)

	list, err := svc.List(context.Background(), "tok", 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "andi", list.Items[0].Username)
	assert.Equal(t, 1, list.Total)
}

func TestUserListWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"u1","role":"editor"},{"id":"u2","role":"user"}],"total":40,"page":2,"limit":2}`)) //nolint:errcheck
	}))
	defer server.Close()

	svc := NewUserService(newTestClient(server.URL), nil)

	list, err := svc.List(context.Background(), "tok", 2, 2)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 40, list.Total)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, models.RoleEditor, list.Items[0].Role)
}

func TestUpdateAccessSendsPartialPayload(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/manage/users/u1/access", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewUserService(newTestClient(server.URL), nil)

	role := models.RoleEditor
	err := svc.UpdateAccess(context.Background(), "tok", "u1", models.UserAccessUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "editor", payload["role"])
	_, hasActive := payload["is_active"]
	assert.False(t, hasActive, "untouched fields stay out of the payload")
}

func TestUpdateAccessEmptyUpdateRefused(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	svc := NewUserService(newTestClient(server.URL), nil)

	err := svc.UpdateAccess(context.Background(), "tok", "u1", models.UserAccessUpdate{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, calls)
}
