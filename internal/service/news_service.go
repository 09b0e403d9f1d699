package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/internal/backend"
	"github.com/noah-isme/kabar-gateway/internal/models"
	"github.com/noah-isme/kabar-gateway/internal/proxy"
	appErrors "github.com/noah-isme/kabar-gateway/pkg/errors"
)

// FrontPageCategories are the category feeds assembled for the home page.
var FrontPageCategories = []string{"national", "international", "sports", "entertainment", "technology"}

// NewsService serves the public read paths. When the backend is unreachable
// the public pages degrade to static mock content rather than going blank;
// admin and workflow paths never do.
type NewsService struct {
	client       *backend.Client
	logger       *zap.Logger
	mockFallback bool
}

// NewNewsService constructs the service.
func NewNewsService(client *backend.Client, logger *zap.Logger, mockFallback bool) *NewsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsService{client: client, logger: logger, mockFallback: mockFallback}
}

// TopStories returns the front page hero items.
func (s *NewsService) TopStories(ctx context.Context) []models.NewsItem {
	items, err := s.fetchList(ctx, "/news/top", nil)
	if err != nil {
		s.logger.Warn("top_stories_fallback", zap.Error(err))
		return s.fallback(mockTopStories())
	}
	return items
}

// CategoryFeed returns the feed for one category.
func (s *NewsService) CategoryFeed(ctx context.Context, category string) []models.NewsItem {
	query := url.Values{}
	query.Set("category", category)
	items, err := s.fetchList(ctx, "/news", query)
	if err != nil {
		s.logger.Warn("category_feed_fallback", zap.String("category", category), zap.Error(err))
		return s.fallback(mockCategory(category))
	}
	return items
}

// Trending returns the trending sidebar items.
func (s *NewsService) Trending(ctx context.Context) []models.NewsItem {
	items, err := s.fetchList(ctx, "/news/trending", nil)
	if err != nil {
		s.logger.Warn("trending_fallback", zap.Error(err))
		return s.fallback(mockTrending())
	}
	return items
}

// Search queries the backend full-text endpoint. A blank query short-circuits
// to an empty result without a network call.
func (s *NewsService) Search(ctx context.Context, q string) []models.NewsItem {
	if strings.TrimSpace(q) == "" {
		return []models.NewsItem{}
	}
	query := url.Values{}
	query.Set("q", q)
	items, err := s.fetchList(ctx, "/news/search", query)
	if err != nil {
		s.logger.Warn("search_fallback", zap.String("q", q), zap.Error(err))
		return s.fallback(mockSearch(q))
	}
	return items
}

// ByID fetches a single article.
func (s *NewsService) ByID(ctx context.Context, id string) (*models.NewsItem, error) {
	if id == "" {
		return nil, appErrors.ErrNotFound
	}
	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, "/news/"+url.PathEscape(id), nil, "", &raw); err != nil {
		if s.mockFallback {
			if item := mockByID(id); item != nil {
				return item, nil
			}
		}
		return nil, err
	}
	return proxy.NormalizeItem(raw)
}

// Categories returns the reference category list.
func (s *NewsService) Categories(ctx context.Context) []models.Category {
	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, "/categories", nil, "", &raw); err != nil {
		return []models.Category{}
	}

	var wrapped struct {
		Items []models.Category `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items
	}
	var bare []models.Category
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare
	}
	return []models.Category{}
}

// FrontPage holds everything the home page renders.
type FrontPage struct {
	TopStories []models.NewsItem
	Feeds      map[string][]models.NewsItem
	Trending   []models.NewsItem
}

// AssembleFrontPage fans out the independent reads concurrently. The fetches
// share no mutation, so a WaitGroup is all the coordination needed.
func (s *NewsService) AssembleFrontPage(ctx context.Context) FrontPage {
	page := FrontPage{Feeds: make(map[string][]models.NewsItem, len(FrontPageCategories))}

	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		page.TopStories = s.TopStories(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		page.Trending = s.Trending(ctx)
	}()

	for _, category := range FrontPageCategories {
		category := category
		wg.Add(1)
		go func() {
			defer wg.Done()
			feed := s.CategoryFeed(ctx, category)
			mu.Lock()
			page.Feeds[category] = feed
			mu.Unlock()
		}()
	}

	wg.Wait()
	return page
}

func (s *NewsService) fetchList(ctx context.Context, path string, query url.Values) ([]models.NewsItem, error) {
	var raw json.RawMessage
	if err := s.client.GetJSON(ctx, path, query, "", &raw); err != nil {
		return nil, err
	}
	list, err := proxy.NormalizeList(raw, 1, 0)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (s *NewsService) fallback(items []models.NewsItem) []models.NewsItem {
	if !s.mockFallback {
		return []models.NewsItem{}
	}
	return items
}
