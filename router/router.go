// Package router assembles the HTTP API.
package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/clausewise/config"
	"github.com/AnTengye/clausewise/handler"
	"github.com/AnTengye/clausewise/middleware"
	"github.com/AnTengye/clausewise/service"
)

// Deps are the services behind the routes. Storage and Callbacks are
// optional; without Callbacks the MinerU callback route is not mounted.
type Deps struct {
	Config     *config.Config
	Store      *service.DocumentStore
	Storage    service.ObjectStorage
	Callbacks  handler.CallbackParser
	Processor  *service.Processor
	Analyzer   *service.Analyzer
	Simplifier service.Simplifier
	Chat       *service.ChatService
}

func New(d Deps) *gin.Engine {
	cfg := d.Config

	authHandler := handler.NewAuthHandler(cfg)
	analyzeHandler := handler.NewAnalyzeHandler(d.Analyzer)
	documentHandler := handler.NewDocumentHandler(d.Store, d.Storage, d.Processor, d.Simplifier, d.Chat, cfg.Server.MaxUploadMB)
	healthHandler := handler.NewHealthHandler(d.Store)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(noCacheMiddleware())

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	api.POST("/auth/login", middleware.RateLimit(cfg.Server.RateLimit, time.Minute), authHandler.Login)
	if d.Callbacks != nil {
		callbackHandler := handler.NewCallbackHandler(d.Callbacks, d.Processor)
		api.POST("/mineru/callback", callbackHandler.HandleCallback)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	protected.Use(middleware.RateLimit(cfg.Server.RateLimit, time.Minute))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.POST("/analyze", analyzeHandler.Analyze)

		protected.POST("/documents/upload", documentHandler.Upload)
		protected.POST("/documents/compare", documentHandler.Compare)
		protected.GET("/documents", documentHandler.List)
		protected.GET("/documents/:id", documentHandler.Get)
		protected.GET("/documents/:id/status", documentHandler.GetStatus)
		protected.DELETE("/documents/:id", documentHandler.Delete)
		protected.GET("/documents/:id/report", documentHandler.Report)
		protected.POST("/documents/:id/simplify", documentHandler.Simplify)
		protected.POST("/documents/:id/chat", documentHandler.Chat)
		protected.GET("/documents/:id/chat", documentHandler.ChatHistory)
	}

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept-Language, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// noCacheMiddleware keeps API responses, which carry per-tenant data, out of
// shared caches.
func noCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}
