package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newsServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body)) //nolint:errcheck
	}))
}

func TestTopStoriesNormalizesWrappedList(t *testing.T) {
	server := newsServer(t, map[string]string{
		"/news/top": `{"items":[{"id":"a","title":"One"},{"id":"b","title":"Two"}],"total":2}`,
	})
	defer server.Close()

	svc := NewNewsService(newTestClient(server.URL), nil, false)

	items := svc.TopStories(context.Background())
	require.Len(t, items, 2)
	assert.Equal(t, "One", items[0].Title)
}

func TestTopStoriesFallsBackToMocksWhenEnabled(t *testing.T) {
	server := newsServer(t, nil)
	server.Close()

	svc := NewNewsService(newTestClient(server.URL), nil, true)

	items := svc.TopStories(context.Background())
	assert.NotEmpty(t, items, "mock fallback should fill the front page")
}

func TestTopStoriesEmptyWhenFallbackDisabled(t *testing.T) {
	server := newsServer(t, nil)
	server.Close()

	svc := NewNewsService(newTestClient(server.URL), nil, false)

	items := svc.TopStories(context.Background())
	assert.Empty(t, items)
}

func TestCategoryFeedSendsCategoryQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "sports", r.URL.Query().Get("category"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"s1","title":"Final"}]`)) //nolint:errcheck
	}))
	defer server.Close()

	svc := NewNewsService(newTestClient(server.URL), nil, false)

	items := svc.CategoryFeed(context.Background(), "sports")
	require.Len(t, items, 1)
	assert.Equal(t, "s1", items[0].ID)
}

func TestSearchBlankQueryShortCircuits(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	svc := NewNewsService(newTestClient(server.URL), nil, true)

	assert.Empty(t, svc.Search(context.Background(), ""))
	assert.Empty(t, svc.Search(context.Background(), "   "))
	assert.Zero(t, calls, "blank query must not reach the backend")
}

func TestByIDFlatRecord(t *testing.T) {
	server := newsServer(t, map[string]string{
		"/news/n1": `{"id":"n1","title":"Article","status":"published"}`,
	})
	defer server.Close()

	svc := NewNewsService(newTestClient(server.URL), nil, false)

	item, err := svc.ByID(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "Article", item.Title)
}

func TestByIDNoFallbackWithoutFlag(t *testing.T) {
	server := newsServer(t, nil)
	server.Close()

	svc := NewNewsService(newTestClient(server.URL), nil, false)

	_, err := svc.ByID(context.Background(), "n1")
	assert.Error(t, err)
}

func TestCategoriesAcceptsBareAndWrappedShapes(t *testing.T) {
	wrapped := newsServer(t, map[string]string{
		"/categories": `{"items":[{"id":"c1","name":"Sports"}]}`,
	})
	defer wrapped.Close()

	svc := NewNewsService(newTestClient(wrapped.URL), nil, false)
	categories := svc.Categories(context.Background())
	require.Len(t, categories, 1)
	assert.Equal(t, "Sports", categories[0].Name)

	bare := newsServer(t, map[string]string{
		"/categories": `[{"id":"c1","name":"Sports"},{"id":"c2","name":"Tech"}]`,
	})
	defer bare.Close()

	svc = NewNewsService(newTestClient(bare.URL), nil, false)
	assert.Len(t, svc.Categories(context.Background()), 2)
}

func TestAssembleFrontPageFillsEverySection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/news/top":
			w.Write([]byte(`[{"id":"top1"}]`)) //nolint:errcheck
		case "/news/trending":
			w.Write([]byte(`[{"id":"tr1"}]`)) //nolint:errcheck
		case "/news":
			w.Write([]byte(`[{"id":"` + r.URL.Query().Get("category") + `-1"}]`)) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	svc := NewNewsService(newTestClient(server.URL), nil, false)

	page := svc.AssembleFrontPage(context.Background())
	assert.Len(t, page.TopStories, 1)
	assert.Len(t, page.Trending, 1)
	require.Len(t, page.Feeds, len(FrontPageCategories))
	for _, category := range FrontPageCategories {
		require.Len(t, page.Feeds[category], 1, category)
		assert.Equal(t, category+"-1", page.Feeds[category][0].ID)
	}
}
