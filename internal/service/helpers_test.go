package service

import (
	"time"

	"github.com/noah-isme/kabar-gateway/internal/backend"
	"github.com/noah-isme/kabar-gateway/pkg/config"
)

func newTestClient(baseURL string) *backend.Client {
	return backend.New(config.BackendConfig{BaseURL: baseURL, Timeout: 5 * time.Second}, nil)
}
