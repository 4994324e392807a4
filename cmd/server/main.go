package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trogers1052/stock-trader-dashboard/internal/api"
	"github.com/trogers1052/stock-trader-dashboard/internal/apiclient"
	"github.com/trogers1052/stock-trader-dashboard/internal/config"
	"github.com/trogers1052/stock-trader-dashboard/internal/dashboard"
	"github.com/trogers1052/stock-trader-dashboard/internal/kafka"
	"github.com/trogers1052/stock-trader-dashboard/internal/logger"
	"github.com/trogers1052/stock-trader-dashboard/internal/metrics"
	"github.com/trogers1052/stock-trader-dashboard/internal/query"
	"github.com/trogers1052/stock-trader-dashboard/internal/redis"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	// Trading API client
	upstream := apiclient.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	log.Info().Str("base_url", upstream.BaseURL()).Msg("Trading API client configured")

	m := metrics.New()

	queryOpts := query.Options{
		Retry:     cfg.Query.Retry,
		StaleTime: cfg.Query.StaleTime,
		Observer:  m,
		Logger:    log,
	}

	handlerOpts := api.Options{
		BasePath:   cfg.Server.BasePath,
		RenderWait: cfg.Query.RenderWait,
		Upstream:   upstream,
		Metrics:    m,
	}
	// Connect to Redis
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Address()).Msg("Failed to connect to Redis, continuing without shared cache")
		} else {
			defer redisClient.Close()
			queryOpts.Store = redisClient
			queryOpts.StoreTTL = cfg.Redis.CacheTTL
			handlerOpts.Redis = redisClient
			log.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis cache")
		}
	}

	queries := query.NewClient(queryOpts)
	service := dashboard.NewService(upstream, queries, cfg.Server.Location(), log)

	renderer, err := dashboard.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load dashboard template")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Kafka listener invalidates cached queries on trading events
	var listener *kafka.TradesListener
	if cfg.Kafka.Enabled() {
		listener = kafka.NewTradesListener(
			cfg.Kafka.Brokers,
			cfg.Kafka.TradesTopic,
			cfg.Kafka.ConsumerGroup,
			service,
			log,
		)
		handlerOpts.KafkaTopic = listener.Topic()
		go func() {
			log.Info().
				Str("topic", cfg.Kafka.TradesTopic).
				Str("group", cfg.Kafka.ConsumerGroup).
				Msg("Starting Kafka trades listener")
			if err := listener.Start(ctx); err != nil {
				log.Error().Err(err).Msg("Kafka trades listener error")
			}
		}()
	}

	// Set up HTTP handler and routes
	handler := api.NewHandler(service, renderer, handlerOpts, log)
	router := api.SetupRoutes(handler, dashboard.StaticFS(), m.Handler())

	// Create HTTP server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Query.RenderWait + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Str("base_path", cfg.Server.BasePath).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel context to stop the Kafka listener
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if listener != nil {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Kafka trades listener")
		}
	}

	log.Info().Msg("Server stopped")
}
