package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agoralive/agora/api"
	"github.com/agoralive/agora/config"
	"github.com/agoralive/agora/engine"
	"github.com/agoralive/agora/factcheck"
	"github.com/agoralive/agora/internal/metrics"
	"github.com/agoralive/agora/internal/server"
	"github.com/agoralive/agora/internal/telemetry"
	"github.com/agoralive/agora/llm"
	"github.com/agoralive/agora/llm/speech"
	"github.com/agoralive/agora/research"
	"github.com/agoralive/agora/store"
)

// app bundles the assembled service: the API server, the optional
// metrics server, the engine, and everything that needs shutting down.
type app struct {
	cfg           *config.Config
	logger        *zap.Logger
	store         store.Store
	engine        *engine.Engine
	apiServer     *server.Manager
	metricsServer *server.Manager
	telemetry     *telemetry.Providers
}

// newApp wires every component from config. Optional collaborators
// degrade rather than block startup: no search key means ungrounded
// debates, no speech endpoint means silent turns.
func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	var notifier store.Notifier
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		notifier = store.NewRedisNotifier(client, logger)
		logger.Info("using redis change notifier", zap.String("addr", cfg.Redis.Addr))
	}

	st, err := store.Open(store.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, notifier, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	provider := llm.NewOpenAICompatProvider(llm.OpenAICompatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger)

	var searcher research.SearchProvider
	if cfg.Search.APIKey != "" {
		searcher = research.NewTavilyProvider(research.TavilyConfig{
			BaseURL: cfg.Search.BaseURL,
			APIKey:  cfg.Search.APIKey,
			Timeout: cfg.Search.Timeout,
		}, logger)
	} else {
		logger.Info("no search key configured, debates run ungrounded")
	}
	coordinator := research.NewCoordinator(searcher, st, cfg.Search.RatePerSecond, logger)

	var tts speech.Provider
	if cfg.Speech.APIKey != "" {
		tts = speech.NewOpenAICompatProvider(speech.OpenAICompatConfig{
			BaseURL: cfg.Speech.BaseURL,
			APIKey:  cfg.Speech.APIKey,
			Model:   cfg.Speech.Model,
			Timeout: cfg.Speech.Timeout,
		}, logger)
	}
	blobs := store.NewFileBlobStore(cfg.Speech.BlobDir, cfg.Speech.BlobBaseURL)
	synthesizer := speech.NewSynthesizer(tts, blobs, cfg.Speech.ChunkLimit, logger)

	engineMetrics := metrics.New(prometheus.DefaultRegisterer)
	verifier := factcheck.NewVerifier(provider, st, logger)

	eng := engine.New(engine.Deps{
		Store:    st,
		Provider: provider,
		Research: coordinator,
		Verifier: verifier,
		Speech:   synthesizer,
		Metrics:  engineMetrics,
		Logger:   logger,
	}, cfg.Debate)

	router := api.NewRouter(api.RouterConfig{
		Engine:     eng,
		Store:      st,
		Defaults:   cfg.Debate.DebateDefaults,
		Metrics:    engineMetrics,
		AuthSecret: cfg.Auth.Secret,
		Version:    Version,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		Logger:     logger,
	})

	apiServer := server.NewManager(router, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	var metricsServer *server.Manager
	if cfg.Server.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = server.NewManager(mux, server.Config{
			Addr:            fmt.Sprintf(":%d", cfg.Server.MetricsPort),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		}, logger)
	}

	return &app{
		cfg:           cfg,
		logger:        logger,
		store:         st,
		engine:        eng,
		apiServer:     apiServer,
		metricsServer: metricsServer,
		telemetry:     otelProviders,
	}, nil
}

// Start brings up the HTTP servers.
func (a *app) Start() error {
	if a.metricsServer != nil {
		if err := a.metricsServer.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
	}
	return a.apiServer.Start()
}

// WaitForShutdown blocks until a signal arrives, then tears everything
// down in dependency order.
func (a *app) WaitForShutdown() {
	a.apiServer.WaitForShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Let in-flight debates finish their current write, then close.
	a.engine.Wait()

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close failed", zap.Error(err))
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
}
