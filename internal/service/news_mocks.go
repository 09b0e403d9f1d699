package service

import (
	"strings"
	"time"

	"github.com/noah-isme/kabar-gateway/internal/models"
)

// Static placeholder content used when the backend cannot be reached, so the
// public pages stay visibly populated instead of rendering blank.

var mockPublishedAt = time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)

func mockItem(id, title, category, content string) models.NewsItem {
	published := mockPublishedAt
	return models.NewsItem{
		ID:          id,
		Title:       title,
		Content:     content,
		Image:       "https://picsum.photos/seed/" + id + "/800/450",
		Category:    category,
		Status:      models.StatusPublished,
		AuthorName:  "Newsroom",
		CreatedAt:   mockPublishedAt,
		PublishedAt: &published,
	}
}

func mockTopStories() []models.NewsItem {
	return []models.NewsItem{
		mockItem("top-1", "Government Announces New Economic Plan to Boost Job Growth", "national",
			"The plan combines targeted tax relief with an infrastructure investment package."),
		mockItem("top-2", "Tech Giant Unveils Latest Smartphone Model with Advanced Features", "technology",
			"The flagship device ships with an upgraded camera system and a larger battery."),
	}
}

func mockCategory(category string) []models.NewsItem {
	titles := map[string]string{
		"national":      "Major Infrastructure Project Commences in Urban Area",
		"international": "Global Leaders Gather for Climate Change Summit",
		"sports":        "Local Team Advances to Championship Final After Thrilling Match",
		"entertainment": "Critically Acclaimed Film Wins Multiple Awards at Prestigious Ceremony",
		"technology":    "Breakthrough in Artificial Intelligence Research Leads to New Possibilities",
	}
	title, ok := titles[category]
	if !ok {
		title = capitalize(category) + " Headline"
	}
	return []models.NewsItem{
		mockItem(category+"-1", title, category, "Full coverage will follow as the story develops."),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func mockTrending() []models.NewsItem {
	return []models.NewsItem{
		mockItem("t1", "New Environmental Regulations", "national", ""),
		mockItem("t2", "Summer Travel Safety Tips", "national", ""),
		mockItem("t3", "Stock Market Update", "national", ""),
	}
}

func mockSearch(q string) []models.NewsItem {
	term := strings.ToLower(strings.TrimSpace(q))
	haystack := mockTopStories()
	for _, category := range FrontPageCategories {
		haystack = append(haystack, mockCategory(category)...)
	}

	matches := make([]models.NewsItem, 0, len(haystack))
	for _, item := range haystack {
		if strings.Contains(strings.ToLower(item.Title), term) ||
			strings.Contains(strings.ToLower(item.Content), term) {
			matches = append(matches, item)
		}
	}
	return matches
}

func mockByID(id string) *models.NewsItem {
	haystack := mockTopStories()
	for _, category := range FrontPageCategories {
		haystack = append(haystack, mockCategory(category)...)
	}
	haystack = append(haystack, mockTrending()...)

	for _, item := range haystack {
		if item.ID == id {
			found := item
			return &found
		}
	}
	return nil
}
