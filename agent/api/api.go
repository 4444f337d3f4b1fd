// Package api exposes the dialogue service over HTTP and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/cart"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

type Config struct {
	Addr              string        `split_words:"true" default:":8080"`
	RequestLimit      int           `split_words:"true" default:"120"`
	RateWindow        time.Duration `split_words:"true" default:"1m"`
	ReadHeaderTimeout time.Duration `split_words:"true" default:"10s"`
	ShutdownTimeout   time.Duration `split_words:"true" default:"10s"`
	AllowedOrigins    []string      `split_words:"true" default:"*"`
	MaxMessageBytes   int64         `split_words:"true" default:"8192"`
}

// Dialogue is the part of the orchestrator the API serves.
type Dialogue interface {
	HandleMessage(ctx context.Context, sessionID string, text string) (orchestrator.Result, error)
	CartSnapshot(ctx context.Context, sessionID string) (cart.Snapshot, error)
	Profile(ctx context.Context, sessionID string) (statex.Profile, error)
	IsOrderReady(ctx context.Context, sessionID string) (bool, error)
	Diagnostics(ctx context.Context, sessionID string) (orchestrator.Diagnostics, error)
	ClearCart(ctx context.Context, sessionID string) (cart.Snapshot, error)
	ResetProfile(ctx context.Context, sessionID string) (statex.Profile, error)
}

type handler struct {
	svc   Dialogue
	cfg   Config
	newID func() string
}

func NewRouter(svc Dialogue, cfg Config, logger zerolog.Logger) http.Handler {
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 8192
	}
	h := &handler{svc: svc, cfg: cfg, newID: uuid.NewString}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("http request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/sessions", func(r chi.Router) {
		if cfg.RequestLimit > 0 && cfg.RateWindow > 0 {
			r.Use(rateLimit(cfg.RequestLimit, cfg.RateWindow))
		}
		r.Post("/", h.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Post("/messages", h.postMessage)
			r.Get("/cart", h.getCart)
			r.Delete("/cart", h.clearCart)
			r.Get("/profile", h.getProfile)
			r.Delete("/profile", h.resetProfile)
			r.Get("/ready", h.getReady)
			r.Get("/diagnostics", h.getDiagnostics)
			r.Get("/ws", h.serveWS)
		})
	})
	return r
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		}),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrInvalidSession), errors.Is(err, orchestrator.ErrInvalidMessage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
