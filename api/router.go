// Package api wires the HTTP surface: debate lifecycle endpoints, the
// websocket change feed, health probes, and bearer-token auth.
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agoralive/agora/api/handlers"
	"github.com/agoralive/agora/engine"
	"github.com/agoralive/agora/internal/metrics"
	"github.com/agoralive/agora/internal/server"
	"github.com/agoralive/agora/store"
	"github.com/agoralive/agora/types"
)

// RouterConfig collects everything the router needs.
type RouterConfig struct {
	Engine     *engine.Engine
	Store      store.Store
	Defaults   func() types.DebateConfig
	Metrics    *metrics.Metrics
	AuthSecret string
	Version    string
	BuildTime  string
	GitCommit  string
	Logger     *zap.Logger
}

// NewRouter builds the service mux. Health probes stay unauthenticated;
// everything under /v1 goes through the auth middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	debates := handlers.NewDebateHandler(cfg.Engine, cfg.Store, cfg.Metrics, logger)
	health := handlers.NewHealthHandler(logger)
	feed := server.NewFeed(cfg.Store.Notifier(), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.HandleHealth)
	mux.HandleFunc("GET /ready", health.HandleReady)
	mux.HandleFunc("GET /version", health.HandleVersion(cfg.Version, cfg.BuildTime, cfg.GitCommit))

	v1 := http.NewServeMux()
	v1.HandleFunc("POST /v1/debates", debates.HandleCreate(cfg.Defaults))
	v1.HandleFunc("GET /v1/debates/{id}", debates.HandleGet)
	v1.HandleFunc("GET /v1/debates/{id}/turns", debates.HandleListTurns)
	v1.HandleFunc("GET /v1/debates/{id}/verdicts", debates.HandleListVerdicts)
	v1.HandleFunc("GET /v1/debates/{id}/alerts", debates.HandleListAlerts)
	v1.HandleFunc("GET /v1/debates/{id}/summary", debates.HandleGetSummary)
	v1.HandleFunc("POST /v1/debates/{id}/votes", debates.HandleVote)
	v1.HandleFunc("GET /v1/debates/{id}/feed", func(w http.ResponseWriter, r *http.Request) {
		feed.Serve(w, r, r.PathValue("id"))
	})

	auth := handlers.NewAuthMiddleware(cfg.AuthSecret, logger)
	mux.Handle("/v1/", auth.Wrap(v1))
	return mux
}
