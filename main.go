package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/blogforge/backend/config"
	"github.com/blogforge/backend/embed"
	"github.com/blogforge/backend/extractor"
	"github.com/blogforge/backend/generator"
	"github.com/blogforge/backend/images"
	"github.com/blogforge/backend/keywords"
	"github.com/blogforge/backend/logging"
	"github.com/blogforge/backend/middleware"
	"github.com/blogforge/backend/pipeline"
	"github.com/blogforge/backend/promptbuild"
	"github.com/blogforge/backend/render"
	"github.com/blogforge/backend/stats"
	"github.com/blogforge/backend/topics"
	"github.com/blogforge/backend/validator"
)

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			slog.Info("no .env file found, using environment variables")
		}
	}
}

func setupGinMode(env string) {
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		mode = gin.ReleaseMode
		if env == "development" {
			mode = gin.DebugMode
		}
	}
	gin.SetMode(mode)
}

func newProvider(ctx context.Context, cfg *config.Config) (generator.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return generator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.ProviderOpenAI:
		return generator.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logging.Init(cfg.Env)
	setupGinMode(cfg.Env)

	ctx := context.Background()
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		slog.Error("provider setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	storage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		slog.Error("statistics storage setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	embedder := embed.NewClient(cfg.EmbeddingURL, cfg.EmbeddingModel, cfg.RequestTimeout)

	pipe := pipeline.New(pipeline.Config{
		Validator: validator.New(cfg.RequestTimeout),
		Extractor: extractor.New(cfg.RequestTimeout, cfg.MaxContentChars, cfg.MinContentChars),
		Keywords:  keywords.New(embedder),
		Topics:    topics.New(embedder),
		Generator: generator.New(provider, generator.DefaultRetryPolicy, cfg.MaxSections),
		Images:    images.New(cfg.UnsplashAccessKey, cfg.RequestTimeout),
		Renderer:  render.Renderer{},
		Storage:   storage,
	})

	rateLimiter := middleware.NewRateLimiter(2, 5) // 2 requests per second, bucket size of 5

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RequestID())
	r.Use(rateLimiter.RateLimit())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":   "ok",
				"provider": cfg.Provider,
			})
		})

		api.POST("/generate", generateBlog(pipe, cfg))
		api.POST("/estimate-cost", estimateCost(cfg))

		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"current": storage.GetCurrentStats(),
				"months":  storage.GetAllMonths(),
			})
		})
	}

	slog.Info("server starting", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func generateBlog(pipe *pipeline.Pipeline, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pipeline.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid request body: " + err.Error(),
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.LLMTimeout+cfg.RequestTimeout)
		defer cancel()

		resp, err := pipe.Run(ctx, req)
		if err != nil {
			status := pipeline.StatusFor(err)
			c.JSON(status, gin.H{
				"success": false,
				"error":   err.Error(),
				"details": fmt.Sprintf("Status code: %d", status),
			})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func estimateCost(cfg *config.Config) gin.HandlerFunc {
	model := cfg.GeminiModel
	if cfg.Provider == config.ProviderOpenAI {
		model = cfg.OpenAIModel
	}

	return func(c *gin.Context) {
		var req struct {
			URL       string `json:"url"`
			WordCount int    `json:"word_count"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid request body",
			})
			return
		}

		// Same bounds as generation itself, so the estimate matches what a
		// generate call with these knobs would actually request.
		words := promptbuild.Options{WordCount: req.WordCount}.Normalize().WordCount

		c.JSON(http.StatusOK, gin.H{
			"url":                req.URL,
			"word_count":         words,
			"estimated_cost_usd": generator.EstimateCost(model, words),
			"provider":           cfg.Provider,
			"model":              model,
		})
	}
}
