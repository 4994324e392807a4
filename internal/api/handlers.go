package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/stock-trader-dashboard/internal/dashboard"
)

// DashboardLoader loads the current dashboard view
type DashboardLoader interface {
	Load(ctx context.Context) dashboard.View
}

// Pinger is anything whose reachability the health check reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// RenderObserver records page renders
type RenderObserver interface {
	ObserveRender(failed bool)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	dashboard  DashboardLoader
	renderer   *dashboard.Renderer
	basePath   string
	renderWait time.Duration
	upstream   Pinger
	redis      Pinger
	kafkaTopic string
	metrics    RenderObserver
	log        zerolog.Logger
}

// Options configures the optional parts of a Handler
type Options struct {
	BasePath   string
	RenderWait time.Duration
	Upstream   Pinger
	Redis      Pinger
	KafkaTopic string
	Metrics    RenderObserver
}

// NewHandler creates a new Handler
func NewHandler(loader DashboardLoader, renderer *dashboard.Renderer, opts Options, log zerolog.Logger) *Handler {
	basePath := opts.BasePath
	if basePath == "" {
		basePath = "/"
	}
	return &Handler{
		dashboard:  loader,
		renderer:   renderer,
		basePath:   basePath,
		renderWait: opts.RenderWait,
		upstream:   opts.Upstream,
		redis:      opts.Redis,
		kafkaTopic: opts.KafkaTopic,
		metrics:    opts.Metrics,
		log:        log.With().Str("component", "api").Logger(),
	}
}

// Dashboard handles GET {base}. Upstream failures are part of the page, not an HTTP error.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view := h.load(r.Context())
	view.BasePath = h.basePath

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Render(w, view); err != nil {
		h.log.Error().Err(err).Msg("Failed to render dashboard")
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	h.observeRender(view.Err != nil)
}

// DashboardJSON handles GET {base}api/dashboard
func (h *Handler) DashboardJSON(w http.ResponseWriter, r *http.Request) {
	view := h.load(r.Context())
	h.observeRender(view.Err != nil)
	respondJSON(w, http.StatusOK, view)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  map[string]string{},
	}
	services := health["services"].(map[string]string)
	allHealthy := true

	// Check trading API
	if h.upstream != nil {
		if err := h.upstream.Ping(ctx); err != nil {
			services["api"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			services["api"] = "healthy"
		}
	} else {
		services["api"] = "not configured"
		allHealthy = false
	}

	// Check Redis
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	// Check Kafka listener
	if h.kafkaTopic != "" {
		services["kafka"] = "listening on " + h.kafkaTopic
	} else {
		services["kafka"] = "not configured"
	}

	if !allHealthy {
		health["status"] = "degraded"
	}

	respondJSON(w, http.StatusOK, health)
}

func (h *Handler) load(ctx context.Context) dashboard.View {
	if h.renderWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.renderWait)
		defer cancel()
	}
	return h.dashboard.Load(ctx)
}

func (h *Handler) observeRender(failed bool) {
	if h.metrics != nil {
		h.metrics.ObserveRender(failed)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
