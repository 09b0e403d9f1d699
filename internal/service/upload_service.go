package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/internal/backend"
	"github.com/noah-isme/kabar-gateway/pkg/config"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// UploadResult is the backend's answer to a stored image.
type UploadResult struct {
	Path string `json:"path"`
}

// UploadService validates an image upload locally, then forwards it to the
// backend as multipart. Validation failures never reach the network.
type UploadService struct {
	client *backend.Client
	cfg    config.UploadConfig
	logger *zap.Logger
}

// NewUploadService constructs the service.
func NewUploadService(client *backend.Client, cfg config.UploadConfig, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{client: client, cfg: cfg, logger: logger}
}

// Forward checks size and sniffed MIME type against the configured limits and
// relays the file to the backend upload endpoint with the caller's token.
func (s *UploadService) Forward(ctx context.Context, token string, file *multipart.FileHeader) (*UploadResult, error) {
	if token == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no file uploaded")
	}
	if file.Size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload")
	}
	defer src.Close() //nolint:errcheck

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload")
	}
	if !s.allowedMIME(http.DetectContentType(head[:n])) {
		return nil, appErrors.ErrUnsupportedFile
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "rewind upload")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", file.Filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build multipart payload")
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "copy upload payload")
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "finalize multipart payload")
	}

	resp, err := s.client.Do(ctx, http.MethodPost, "/manage/upload", nil, &buf, writer.FormDataContentType(), token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "read upload response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := "upload rejected by backend"
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
			message = payload.Message
		}
		return nil, &appErrors.Error{Code: "UPLOAD_REJECTED", Status: resp.StatusCode, Message: message}
	}

	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "malformed upload response")
	}
	return &result, nil
}

func (s *UploadService) allowedMIME(mime string) bool {
	for _, allowed := range s.cfg.AllowedMIMEs {
		if mime == allowed {
			return true
		}
	}
	return false
}
