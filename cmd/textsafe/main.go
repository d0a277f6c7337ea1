package main

import (
	"context"
	"os"

	"github.com/textsafe/textsafe/internal/category"
	"github.com/textsafe/textsafe/internal/classifier"
	"github.com/textsafe/textsafe/internal/moderation"
	"github.com/textsafe/textsafe/internal/proxy"
	"github.com/textsafe/textsafe/internal/report"
	"github.com/textsafe/textsafe/internal/scanner"
	"github.com/textsafe/textsafe/internal/sentiment"
	"github.com/textsafe/textsafe/internal/server"
	"github.com/textsafe/textsafe/internal/storage"
	"github.com/textsafe/textsafe/internal/synonym"
	"github.com/textsafe/textsafe/pkg/config"
	"github.com/textsafe/textsafe/pkg/retry"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", configPath))
	}

	// Initialize storage, retrying until the database accepts
	// connections. Exhausted retries are fatal here: this process has
	// no degraded mode worth serving.
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		policy := retry.Policy{
			MaxAttempts: cfg.Bootstrap.MaxAttempts,
			Delay:       cfg.Bootstrap.RetryDelay,
			Logger:      logger,
		}
		dbConfig := storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}
		store, err = storage.Connect(context.Background(), dbConfig, policy, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize the classification backend behind the caching proxy
	backend, err := buildBackend(cfg.Backend)
	if err != nil {
		logger.Warn("Classification backend unavailable, running lexicon-only", zap.Error(err))
		backend = nil
	}

	p := proxy.New(proxy.Options{
		CacheTTL:      cfg.Proxy.CacheTTL,
		SweepInterval: cfg.Proxy.SweepInterval,
		RateLimit:     cfg.Proxy.RateLimit,
		RateWindow:    cfg.Proxy.RateWindow,
		Logger:        logger,
	})
	defer p.Close()

	ai := classifier.NewClient(backend, p, cfg.Backend.Timeout, logger)

	// Wire the services
	resolver := category.NewResolver(store, ai, logger)
	reporter := report.New(store, ai, logger)
	mod := moderation.New(store, scanner.New(), ai, resolver, reporter, logger)
	synonyms := synonym.New(store, ai, logger)
	sentiments := sentiment.New(store, ai, logger)

	srv := server.New(mod, resolver, synonyms, sentiments, reporter, logger)
	logger.Info("Starting server", zap.Int("port", cfg.Server.Port))
	if err := srv.Run(cfg.Server.Port); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func buildBackend(cfg config.BackendConfig) (classifier.Backend, error) {
	switch cfg.Provider {
	case "openai":
		return classifier.NewOpenAIBackend(cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature), nil
	default:
		return classifier.NewGeminiBackend(classifier.GeminiOptions{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
	}
}
