package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ikarus-labs/recommender/internal/analytics"
	"github.com/ikarus-labs/recommender/internal/api"
	"github.com/ikarus-labs/recommender/internal/config"
	"github.com/ikarus-labs/recommender/internal/database"
	"github.com/ikarus-labs/recommender/internal/embedding"
	"github.com/ikarus-labs/recommender/internal/llm"
	"github.com/ikarus-labs/recommender/internal/recommend"
	"github.com/ikarus-labs/recommender/internal/vectorstore"
	"github.com/ikarus-labs/recommender/pkg/tokenizer"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// API keys and endpoints come from .env in development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Pipeline initialization happens once. On failure the server still
	// comes up and serves 503 on /rag-recommend rather than retrying a
	// known-down dependency per request.
	var (
		pipeline recommend.Pipeline
		index    vectorstore.ProductIndex
	)
	pool, err := database.NewPool(ctx, cfg.Index)
	if err != nil {
		slog.Error("product index unavailable, recommendations disabled", "error", err)
	} else {
		defer pool.Close()
		index = vectorstore.NewPgVectorIndex(pool)

		gateway := llm.NewGateway(cfg.LLM)
		embedSvc := embedding.NewService(gateway, cfg.Retrieval.EmbeddingModel)
		counter := tokenizer.ForModel(cfg.LLM.Model)

		pipeline, err = recommend.NewPipeline(index, embedSvc, gateway, cfg.LLM, cfg.Retrieval, counter)
		if err != nil {
			// A bad template or bad generation options is a config
			// defect, not a degraded dependency. Fail the process.
			slog.Error("failed to build recommendation pipeline", "error", err)
			os.Exit(1)
		}
		slog.Info("recommendation pipeline ready",
			"provider", cfg.LLM.Provider,
			"model", cfg.LLM.Model,
			"top_k", cfg.Retrieval.TopK,
		)
	}

	reader := analytics.NewReader(cfg.Analytics.DatasetPath, cfg.Analytics.TopCategories)

	// Redis backs the shared rate limiter when configured.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, using in-memory rate limiting", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	router := api.NewRouter(cfg, pipeline, index, reader, rdb)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
