package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"customs-gateway/internal/adapter/api"
	"customs-gateway/internal/adapter/client"
	"customs-gateway/internal/adapter/store"
	"customs-gateway/internal/config"
	"customs-gateway/internal/domain/repository"
	"customs-gateway/internal/observability"
	"customs-gateway/internal/usecase"
	"customs-gateway/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, envLoaded := config.Load()
	logger := logging.New(cfg.LogLevel)
	if !envLoaded {
		logger.Warn("env file not found, using system environment variables")
	}
	ctx := context.Background()

	genaiClient, err := client.NewGenAIClient(ctx, cfg.GeminiAPIKey, cfg.GoogleCloudProject, cfg.GoogleCloudLocation)
	if err != nil {
		logger.Error("failed to init genai client", "error", err)
		os.Exit(1)
	}

	genOpts := client.DefaultGenerationOptions()
	genOpts.MaxOutputTokens = int32(cfg.MaxOutputTokens)
	primaryModel := client.NewGeminiClientFromClient(genaiClient, cfg.CompletionModel, genOpts)
	var fallbackModel repository.Completer
	if cfg.FallbackModel != "" {
		fallbackModel = client.NewGeminiClientFromClient(genaiClient, cfg.FallbackModel, genOpts)
	}
	completer := usecase.NewResilientProvider(primaryModel, fallbackModel, usecase.ResilienceOptions{
		MaxRetries: cfg.CompletionMaxRetries,
		Timeout:    cfg.CompletionTimeout,
	}, logger)

	embedder := client.NewEmbedderFromClient(genaiClient, cfg.EmbeddingModel)

	// Qdrant for regulation retrieval
	qClient, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.QdrantHost,
		Port: cfg.QdrantPort,
	})
	if err != nil {
		logger.Error("failed to connect to qdrant", "error", err)
		os.Exit(1)
	}
	defer qClient.Close()

	vectorStore := store.NewQdrantStore(qClient, cfg.QdrantCollection, logger)
	if err := vectorStore.InitCollection(ctx, uint64(cfg.EmbeddingDim)); err != nil {
		logger.Error("failed to init qdrant collection", "collection", cfg.QdrantCollection, "error", err)
		os.Exit(1)
	}
	retriever := usecase.NewRAGRetriever(embedder, vectorStore, completer, usecase.RetrievalOptions{
		TopK:           cfg.RetrievalTopK,
		ScoreThreshold: float32(cfg.RetrievalScoreThreshold),
		Broaden:        cfg.RetrievalBroaden,
		Timeout:        cfg.RetrievalTimeout,
	}, logger)

	// Redis for per-caller query limits
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	queryLimiter := store.NewRedisLimiter(rdb, cfg.UserQueryLimit, cfg.UserQueryWindow)

	// Threat audit trail
	auditStore := store.NewCSVAuditStore(cfg.AuditCSVPath)
	var geolocator repository.Geolocator
	if cfg.GeoIPDBPath != "" {
		geo, err := client.NewMaxMindGeolocator(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn("geolocation disabled", "path", cfg.GeoIPDBPath, "error", err)
		} else {
			defer geo.Close()
			geolocator = geo
		}
	}
	var ipResolver repository.IPResolver
	if cfg.PublicIPURL != "" {
		ipResolver = client.NewPublicIPResolver(cfg.PublicIPURL, cfg.GeoTimeout)
	}
	auditLogger := usecase.NewAuditLogger(auditStore, ipResolver, geolocator, cfg.GeoTimeout, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewRouterMetrics(registry)

	router := usecase.NewRouter(
		usecase.NewClassifier(completer, logger),
		usecase.NewThreatScreener(completer),
		usecase.Strategies{
			Expert:      usecase.NewExpertStrategy(completer),
			SelfService: usecase.NewSelfServiceStrategy(completer),
			RuleLookup:  usecase.NewRuleLookupStrategy(completer, retriever, logger),
		},
		auditLogger,
		metrics,
		logger,
	)

	// Initialize API Layer (Delivery Layer)
	app := api.NewApp(api.ServerOptions{
		AppName:        "Customs Trade Assistant Gateway",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.WriteTimeout(),
		ProxyHeader:    cfg.ProxyHeader,
		TrustedProxies: cfg.TrustedProxies,
	})
	api.SetupRouter(app, api.RouterConfig{
		Version:        cfg.AppVersion,
		Env:            cfg.Env,
		JWTSecret:      cfg.OfficerJWTSecret,
		Index:          retriever,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	},
		api.NewChatHandler(router, queryLimiter, cfg.RouteTimeout(), logger),
		api.NewThreatsHandler(auditLogger, logger),
	)
	if cfg.OfficerJWTSecret == "" {
		logger.Warn("OFFICER_JWT_SECRET not set, every caller is anonymous")
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// Start Server
	logger.Info("gateway running", "port", cfg.Port, "env", cfg.Env, "model", primaryModel.Model())
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
