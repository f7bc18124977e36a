// Package server provides the HTTP REST API for the role recommender.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/logging"
	"github.com/jonathan/role-recommender/internal/metrics"
	"github.com/jonathan/role-recommender/internal/recommend"
	"github.com/jonathan/role-recommender/internal/server/ratelimit"
	"github.com/jonathan/role-recommender/internal/stats"
	"github.com/jonathan/role-recommender/internal/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HistoryStore persists comparison requests. It is optional.
type HistoryStore interface {
	RecordComparison(ctx context.Context, cmp *types.Comparison, overrides map[string]string) (uuid.UUID, error)
	ListHistory(ctx context.Context, limit int) ([]types.HistoryEntry, error)
	GetHistoryEntry(ctx context.Context, id uuid.UUID) (*types.HistoryEntry, error)
	DeleteHistoryEntry(ctx context.Context, id uuid.UUID) (bool, error)
	Close()
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	catalog     *artifacts.Catalog
	engine      *recommend.Engine
	history     HistoryStore
	rateLimiter *ratelimit.Limiter
	cors        func(http.Handler) http.Handler

	surveyMu sync.Mutex
	surveys  map[types.LabelSet]*stats.Survey
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	// RateLimit defaults to ratelimit.LoadConfig when nil.
	RateLimit *ratelimit.Config
	Catalog   *artifacts.Catalog
	// History is nil when no database is configured.
	History HistoryStore
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("server requires a loaded catalog")
	}

	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		catalog:     cfg.Catalog,
		engine:      recommend.NewEngine(cfg.Catalog),
		history:     cfg.History,
		rateLimiter: ratelimit.NewLimiter(rl),
		surveys:     make(map[types.LabelSet]*stats.Survey),
		cors: cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			MaxAge:         300,
		}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /label-sets", s.handleLabelSets)
	mux.HandleFunc("GET /label-sets/{label_set}/factors", s.handleFactors)
	mux.HandleFunc("GET /label-sets/{label_set}/options", s.handleOptions)
	mux.HandleFunc("POST /label-sets/{label_set}/compare", s.handleCompare)
	mux.HandleFunc("GET /label-sets/{label_set}/performance", s.handlePerformance)
	mux.HandleFunc("GET /label-sets/{label_set}/association", s.handleAssociation)
	mux.HandleFunc("GET /label-sets/{label_set}/artifacts", s.handleArtifacts)

	mux.HandleFunc("GET /history", s.handleListHistory)
	mux.HandleFunc("GET /history/{id}", s.handleGetHistory)
	mux.HandleFunc("DELETE /history/{id}", s.handleDeleteHistory)

	s.handler = s.withRateLimit(s.withLogging(s.cors(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.publishAvailability()
	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.httpServer.Addr).Msg("Server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	logging.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	logging.Info().Msg("Server stopped")
	return nil
}

// Close releases the rate limiter and history store. The catalog belongs to the caller.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.history != nil {
		s.history.Close()
	}
}

func (s *Server) publishAvailability() {
	for _, summary := range s.engine.LabelSets() {
		ls := string(summary.LabelSet)
		metrics.SetAvailable(ls, "core", summary.Available)
		metrics.SetAvailable(ls, "classifier", summary.CanScore)
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging tags each request with an id and logs it once it completes.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.NewRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(logging.ContextWithRequestID(r.Context(), id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(r.Method, endpoint, rec.status, duration)

		event := logging.Ctx(r.Context()).Info()
		if rec.status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", duration).
			Str("remote", r.RemoteAddr).
			Msg("request completed")
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			metrics.RateLimitedTotal.Inc()
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	for _, summary := range s.engine.LabelSets() {
		if !summary.Available {
			status = "degraded"
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  status,
		"history": s.history != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Err(err).Msg("Error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err to a status code and writes it. Server errors are logged with the request id.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is ignored; deployments behind a proxy should rewrite RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	logging.Warn().
		Int("limit", info.Limit).
		Int("remaining", info.Remaining).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
