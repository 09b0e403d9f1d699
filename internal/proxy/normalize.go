package proxy

import (
	"encoding/json"

	"github.com/noah-isme/kabar-gateway/internal/models"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// Backend list responses arrive in several historical shapes: {items: [...]},
// a bare array, or {items, total, page, limit}. Singles arrive as {item: {}}
// or a flat record. Normalisation happens here, at the proxy boundary, so
// downstream consumers never branch on shape.

// NormalizeList decodes a backend list payload into the canonical NewsList.
func NormalizeList(raw []byte, page, limit int) (models.NewsList, error) {
	list := models.NewsList{Items: []models.NewsItem{}, Page: page, Limit: limit}
	if len(raw) == 0 {
		return list, nil
	}

	var bare []models.NewsItem
	if err := json.Unmarshal(raw, &bare); err == nil {
		list.Items = bare
		list.Total = len(bare)
		return list, nil
	}

	var wrapped struct {
		Items []models.NewsItem `json:"items"`
		Total int               `json:"total"`
		Page  int               `json:"page"`
		Limit int               `json:"limit"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return list, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "malformed list payload")
	}
	if wrapped.Items != nil {
		list.Items = wrapped.Items
	}
	list.Total = wrapped.Total
	if list.Total == 0 {
		list.Total = len(list.Items)
	}
	if wrapped.Page > 0 {
		list.Page = wrapped.Page
	}
	if wrapped.Limit > 0 {
		list.Limit = wrapped.Limit
	}
	return list, nil
}

// NormalizeItem decodes a backend single-record payload, accepting either a
// flat record or an {item: {...}} wrapper.
func NormalizeItem(raw []byte) (*models.NewsItem, error) {
	if len(raw) == 0 {
		return nil, appErrors.ErrNotFound
	}

	var wrapped struct {
		Item *models.NewsItem `json:"item"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Item != nil && wrapped.Item.ID != "" {
		return wrapped.Item, nil
	}

	var flat models.NewsItem
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "malformed item payload")
	}
	if flat.ID == "" {
		return nil, appErrors.ErrNotFound
	}
	return &flat, nil
}
