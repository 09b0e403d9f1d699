package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/noah-isme/kabar-gateway/internal/middleware"
	"github.com/noah-isme/kabar-gateway/internal/models"
	"github.com/noah-isme/kabar-gateway/internal/service"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(ghtml.WithHardWraps()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderContent converts markdown article content into sanitized HTML.
func renderContent(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md)) //nolint:gosec
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec
}

// PageHandler renders the navigational pages. Everything it shows comes from
// the services; no role logic is re-derived here beyond the single
// CanTransition capability check.
type PageHandler struct {
	news       *service.NewsService
	identity   *service.IdentityService
	workflow   *service.WorkflowService
	users      *service.UserService
	cookieName string
	logger     *zap.Logger
}

// NewPageHandler creates the page handler.
func NewPageHandler(news *service.NewsService, identity *service.IdentityService, workflow *service.WorkflowService, users *service.UserService, cookieName string, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{
		news:       news,
		identity:   identity,
		workflow:   workflow,
		users:      users,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Root redirects the bare domain to the home page.
func (h *PageHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, middleware.HomePath)
}

// Home renders the front page from concurrently assembled feeds.
func (h *PageHandler) Home(c *gin.Context) {
	page := h.news.AssembleFrontPage(c.Request.Context())

	query := c.Query("q")
	var results []models.NewsItem
	if query != "" {
		results = h.news.Search(c.Request.Context(), query)
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"TopStories": page.TopStories,
		"Feeds":      page.Feeds,
		"Trending":   page.Trending,
		"Query":      query,
		"Results":    results,
	})
}

// Article renders one published story with markdown content.
func (h *PageHandler) Article(c *gin.Context) {
	item, err := h.news.ByID(c.Request.Context(), c.Param("id"))
	if err != nil || item == nil {
		c.HTML(http.StatusNotFound, "error.html", gin.H{"Message": "Article not found"})
		return
	}

	c.HTML(http.StatusOK, "article.html", gin.H{
		"Item":    item,
		"Content": renderContent(item.Content),
	})
}

// Login renders the login form, carrying the post-login redirect target.
func (h *PageHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "auth_login.html", gin.H{"Next": c.DefaultQuery("next", middleware.HomePath)})
}

// Register renders the registration form.
func (h *PageHandler) Register(c *gin.Context) {
	c.HTML(http.StatusOK, "auth_register.html", nil)
}

// Forgot renders the forgot-password form.
func (h *PageHandler) Forgot(c *gin.Context) {
	c.HTML(http.StatusOK, "auth_forgot.html", nil)
}

// Reset renders the reset-password form.
func (h *PageHandler) Reset(c *gin.Context) {
	c.HTML(http.StatusOK, "auth_reset.html", gin.H{"Token": c.Query("token")})
}

// Profile renders the signed-in user's profile page.
func (h *PageHandler) Profile(c *gin.Context) {
	profile := h.identity.Profile(c.Request.Context(), h.token(c))
	if profile == nil {
		c.Redirect(http.StatusFound, middleware.LoginPath+"?next=%2Fprofil")
		return
	}
	c.HTML(http.StatusOK, "profile.html", gin.H{"Profile": profile})
}

// newsRow pairs a listing entry with the workflow actions the viewer may
// trigger on it.
type newsRow struct {
	Item    models.NewsItem
	Actions []models.TransitionAction
}

// AdminNews renders the content-management workspace: drafts pending review
// and the caller's own items.
func (h *PageHandler) AdminNews(c *gin.Context) {
	profile := middleware.ProfileFromContext(c)
	token := h.token(c)

	pageDrafts, _ := strconv.Atoi(c.DefaultQuery("pageDrafts", "1"))
	pageMine, _ := strconv.Atoi(c.DefaultQuery("pageMine", "1"))

	drafts, err := h.workflow.Drafts(c.Request.Context(), token, pageDrafts, 10)
	if err != nil {
		h.logger.Warn("admin_drafts_unavailable", zap.Error(err))
	}
	mine, err := h.workflow.Mine(c.Request.Context(), token, pageMine, 10)
	if err != nil {
		h.logger.Warn("admin_mine_unavailable", zap.Error(err))
	}

	c.HTML(http.StatusOK, "admin_news.html", gin.H{
		"Profile": profile,
		"Drafts":  rows(profile, drafts.Items),
		"Mine":    rows(profile, mine.Items),
		"Tab":     c.DefaultQuery("tab", "drafts"),
	})
}

// AdminNewsCreate renders the empty draft form.
func (h *PageHandler) AdminNewsCreate(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_news_form.html", gin.H{
		"Profile":    middleware.ProfileFromContext(c),
		"Categories": h.news.Categories(c.Request.Context()),
	})
}

// AdminNewsEdit renders the edit form together with the workflow actions the
// current item state allows.
func (h *PageHandler) AdminNewsEdit(c *gin.Context) {
	profile := middleware.ProfileFromContext(c)

	item, err := h.news.ByID(c.Request.Context(), c.Param("id"))
	if err != nil || item == nil {
		c.HTML(http.StatusNotFound, "error.html", gin.H{"Message": "Article not found"})
		return
	}

	c.HTML(http.StatusOK, "admin_news_form.html", gin.H{
		"Profile":    profile,
		"Item":       item,
		"Actions":    actionsFor(profile, item),
		"Categories": h.news.Categories(c.Request.Context()),
	})
}

// AdminUsers renders the user-management workspace.
func (h *PageHandler) AdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	list, err := h.users.List(c.Request.Context(), h.token(c), page, 10)
	if err != nil {
		h.logger.Warn("admin_users_unavailable", zap.Error(err))
	}

	c.HTML(http.StatusOK, "admin_users.html", gin.H{
		"Profile": middleware.ProfileFromContext(c),
		"Users":   list.Items,
		"Page":    list.Page,
		"Total":   list.Total,
	})
}

func (h *PageHandler) token(c *gin.Context) string {
	if cookie, err := c.Request.Cookie(h.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

var actionOrder = []models.TransitionAction{
	models.ActionSubmit,
	models.ActionApprove,
	models.ActionReject,
	models.ActionPublish,
	models.ActionArchive,
}

func actionsFor(profile *models.UserProfile, item *models.NewsItem) []models.TransitionAction {
	actions := make([]models.TransitionAction, 0, len(actionOrder))
	for _, action := range actionOrder {
		if service.CanTransition(profile, item, action) {
			actions = append(actions, action)
		}
	}
	return actions
}

func rows(profile *models.UserProfile, items []models.NewsItem) []newsRow {
	result := make([]newsRow, 0, len(items))
	for i := range items {
		result = append(result, newsRow{Item: items[i], Actions: actionsFor(profile, &items[i])})
	}
	return result
}
