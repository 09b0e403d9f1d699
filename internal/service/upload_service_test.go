package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kabar-gateway/pkg/config"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// pngHeader is the magic prefix http.DetectContentType keys on for image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

func uploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxFileSizeBytes: 10 << 20,
		AllowedMIMEs:     []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"},
	}
}

func TestUploadForwardsValidImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manage/upload", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close() //nolint:errcheck
		assert.Equal(t, "cover.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"path":"/static/uploads/cover.png"}`)) //nolint:errcheck
	}))
	defer server.Close()

	svc := NewUploadService(newTestClient(server.URL), uploadConfig(), nil)

	result, err := svc.Forward(context.Background(), "tok", makeFileHeader(t, "cover.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/cover.png", result.Path)
}

func TestUploadRequiresToken(t *testing.T) {
	svc := NewUploadService(newTestClient("http://127.0.0.1:0"), uploadConfig(), nil)

	_, err := svc.Forward(context.Background(), "", makeFileHeader(t, "cover.png", pngHeader))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestUploadRejectsOversizeBeforeNetwork(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	cfg := uploadConfig()
	cfg.MaxFileSizeBytes = 8

	svc := NewUploadService(newTestClient(server.URL), cfg, nil)

	_, err := svc.Forward(context.Background(), "tok", makeFileHeader(t, "big.png", pngHeader))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, appErrors.FromError(err).Code)
	assert.Zero(t, calls)
}

func TestUploadRejectsNonImageContent(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	svc := NewUploadService(newTestClient(server.URL), uploadConfig(), nil)

	// Renamed text file: the sniffed type, not the filename, decides.
	_, err := svc.Forward(context.Background(), "tok", makeFileHeader(t, "notes.png", []byte("just some plain text pretending")))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedFile.Code, appErrors.FromError(err).Code)
	assert.Zero(t, calls)
}

func TestUploadMissingFile(t *testing.T) {
	svc := NewUploadService(newTestClient("http://127.0.0.1:0"), uploadConfig(), nil)

	_, err := svc.Forward(context.Background(), "tok", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUploadRelaysBackendRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInsufficientStorage)
		w.Write([]byte(`{"message":"storage full"}`)) //nolint:errcheck
	}))
	defer server.Close()

	svc := NewUploadService(newTestClient(server.URL), uploadConfig(), nil)

	_, err := svc.Forward(context.Background(), "tok", makeFileHeader(t, "cover.png", pngHeader))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusInsufficientStorage, appErr.Status)
	assert.Equal(t, "storage full", appErr.Message)
}
