package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kabar-gateway/internal/backend"
	"github.com/noah-isme/kabar-gateway/internal/handler"
	"github.com/noah-isme/kabar-gateway/internal/middleware"
	"github.com/noah-isme/kabar-gateway/internal/proxy"
	"github.com/noah-isme/kabar-gateway/internal/service"
	"github.com/noah-isme/kabar-gateway/pkg/config"
	"github.com/noah-isme/kabar-gateway/pkg/logger"
	corsmiddleware "github.com/noah-isme/kabar-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/kabar-gateway/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	client := backend.New(cfg.Backend, logr, backend.WithObserver(metricsSvc))
	forwarder := proxy.NewForwarder(client, cfg.Cookie.Name, logr)

	identitySvc := service.NewIdentityService(client, logr)
	newsSvc := service.NewNewsService(client, logr, cfg.Mocks.Enabled)
	workflowSvc := service.NewWorkflowService(client, logr)
	authSvc := service.NewAuthService(client, logr)
	userSvc := service.NewUserService(client, logr)
	uploadSvc := service.NewUploadService(client, cfg.Upload, logr)

	authHandler := handler.NewAuthHandler(authSvc, cfg.Cookie)
	manageHandler := handler.NewManageNewsHandler(workflowSvc, cfg.Cookie.Name)
	uploadHandler := handler.NewUploadHandler(uploadSvc, cfg.Cookie.Name)
	pageHandler := handler.NewPageHandler(newsSvc, identitySvc, workflowSvc, userSvc, cfg.Cookie.Name, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.AccessGate(identitySvc, cfg.Cookie.Name, logr))

	r.LoadHTMLGlob("web/templates/*.html")

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	// Navigational pages, all behind the access gate.
	r.GET("/", pageHandler.Root)
	r.GET("/home", pageHandler.Home)
	r.GET("/berita/:id", pageHandler.Article)
	r.GET("/auth/login", pageHandler.Login)
	r.GET("/auth/register", pageHandler.Register)
	r.GET("/auth/forgot", pageHandler.Forgot)
	r.GET("/auth/reset", pageHandler.Reset)
	r.GET("/profil", pageHandler.Profile)
	r.GET("/admin/news", pageHandler.AdminNews)
	r.GET("/admin/news/create", pageHandler.AdminNewsCreate)
	r.GET("/admin/news/edit/:id", pageHandler.AdminNewsEdit)
	r.GET("/admin/users", pageHandler.AdminUsers)

	// API namespace mirroring the backend, with the proxy's header rules.
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/register", authHandler.Register)
			auth.POST("/reset", authHandler.ResetPassword)
		}

		api.GET("/user/profile", forwarder.Handler("/user/profile"))
		api.PUT("/user/profile", forwarder.Handler("/user/profile"))

		api.GET("/categories", forwarder.Handler("/categories"))

		news := api.Group("/news")
		{
			news.GET("", forwarder.Handler("/news"))
			news.GET("/top", forwarder.Handler("/news/top"))
			news.GET("/trending", forwarder.Handler("/news/trending"))
			news.GET("/search", forwarder.Handler("/news/search"))
			news.GET("/:id", forwarder.HandlerFunc(func(c *gin.Context) string {
				return "/news/" + c.Param("id")
			}))
			news.GET("/:id/comments", forwarder.HandlerFunc(func(c *gin.Context) string {
				return "/news/" + c.Param("id") + "/comments"
			}))
			news.POST("/:id/comments", forwarder.HandlerFunc(func(c *gin.Context) string {
				return "/news/" + c.Param("id") + "/comments"
			}))
			news.POST("/:id/view", forwarder.HandlerFunc(func(c *gin.Context) string {
				return "/news/" + c.Param("id") + "/view"
			}))
		}

		manage := api.Group("/manage")
		{
			manage.POST("/news", manageHandler.Create)
			manage.GET("/news/drafts", manageHandler.Drafts)
			manage.GET("/news/mine", manageHandler.Mine)
			manage.PUT("/news/:id", manageHandler.Update)
			manage.POST("/news/:id/:action", manageHandler.Transition)
			manage.POST("/upload", uploadHandler.Upload)

			manage.GET("/users", forwarder.Handler("/manage/users"))
			manage.PUT("/users/:id/access", forwarder.HandlerFunc(func(c *gin.Context) string {
				return "/manage/users/" + c.Param("id") + "/access"
			}))
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("gateway starting", "addr", addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("gateway failed", "error", err)
	}
}
