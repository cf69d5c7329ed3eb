// Package api wires the HTTP surface: middleware, routes and their handlers.
package api

import (
	"context"
	"net/http"
	"time"

	"ai-chef-server/internal/api/handlers"
	"ai-chef-server/internal/api/handlers/health"
	"ai-chef-server/internal/api/middleware"
	"ai-chef-server/internal/core/ai/cache"
	"ai-chef-server/internal/core/ai/openai"
	"ai-chef-server/internal/core/ai/service"
	"ai-chef-server/internal/core/recipe"
	"ai-chef-server/internal/infrastructure/config"
	"ai-chef-server/internal/infrastructure/store"
	"ai-chef-server/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// Per-request deadline.
	timeoutDuration = 120 * time.Second
	// Request body size limit (1MB). Chat payloads are small text.
	maxBodySize = 1 << 20
)

// SetupRouter builds the Gin engine with all middleware and routes.
func SetupRouter(cfg *config.Config, gateway store.Gateway, cacheManager *cache.Manager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg))

	// Request deadline; surfaced as 504 when exceeded.
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
		}
	})

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("model", cfg.OpenAI.Model),
		zap.Duration("timeout", timeoutDuration),
	)

	aiService := service.NewService(cfg, openai.NewClient(cfg), cacheManager)
	chatSvc := recipe.NewChatService(aiService, gateway, cfg.OpenAI.Timeout)
	transformSvc := recipe.NewTransformService(aiService, gateway, cfg.OpenAI.Timeout)

	var dbPinger, cachePinger health.Pinger
	if p, ok := gateway.(health.Pinger); ok {
		dbPinger = p
	}
	if cacheManager != nil {
		cachePinger = cacheManager
	}
	healthHandler := health.NewHandler(cfg, dbPinger, cachePinger)

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	chatHandler := handlers.NewChatHandler(chatSvc, gateway)
	recipeHandler := handlers.NewRecipeHandler(gateway, transformSvc)

	aiGroup := router.Group("/ai")
	{
		aiGroup.POST("/chat", chatHandler.Chat)
		aiGroup.GET("/chats", chatHandler.ListChats)
		aiGroup.GET("/messages", chatHandler.ListMessages)
	}

	recipesGroup := router.Group("/recipes")
	{
		recipesGroup.POST("/add", recipeHandler.Add)
		recipesGroup.GET("/list", recipeHandler.List)
		recipesGroup.GET("/favorites", recipeHandler.Favorites)
		recipesGroup.POST("/favorite", recipeHandler.Favorite)
		recipesGroup.DELETE("/favorite", recipeHandler.Unfavorite)
		recipesGroup.POST("/start-cooking", recipeHandler.StartCooking)
		recipesGroup.GET("/recently-cooked", recipeHandler.RecentlyCooked)
		recipesGroup.POST("/transform", recipeHandler.Transform)
		recipesGroup.POST("/transform/accept", recipeHandler.TransformAccept)
		recipesGroup.GET("/:id", recipeHandler.Get)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
