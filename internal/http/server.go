// Package http exposes the ledger over a JSON API. Validation happens
// here at the edge; the service and store below assume clean input.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kopilka/internal/log"
	"kopilka/internal/services"
)

type Server struct {
	http.Server
	svc          *services.LedgerService
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *services.LedgerService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		svc:         svc,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.with(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.with(s.handleCreateTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.with(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.with(s.handleRemoveTransaction))
	mux.HandleFunc("DELETE /api/transactions", s.with(s.handleClearTransactions))

	mux.HandleFunc("GET /api/categories", s.with(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.with(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.with(s.handleRemoveCategory))

	mux.HandleFunc("GET /api/budgets", s.with(s.handleListBudgets))

	mux.HandleFunc("GET /api/settings", s.with(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings/currency", s.with(s.handleSetCurrency))

	mux.HandleFunc("GET /api/filters", s.with(s.handleGetFilters))
	mux.HandleFunc("PUT /api/filters", s.with(s.handleSetFilters))
	mux.HandleFunc("DELETE /api/filters", s.with(s.handleClearFilters))
	mux.HandleFunc("PUT /api/filters/type", s.with(s.handleSetTypeFilter))
	mux.HandleFunc("PUT /api/filters/category", s.with(s.handleSetCategoryFilter))
	mux.HandleFunc("PUT /api/filters/period", s.with(s.handleSetPeriodFilter))

	mux.HandleFunc("GET /api/reports/totals", s.with(s.handleTotals))
	mux.HandleFunc("GET /api/reports/categories", s.with(s.handleCategoryBreakdown))
	mux.HandleFunc("GET /api/reports/daily", s.with(s.handleDailySeries))

	mux.HandleFunc("GET /api/export/count", s.with(s.handleExportCount))

	return s
}

// with adds request tracing, security headers and rate limiting. Only
// mutating methods count against the limit.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, ip,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if r.Method != http.MethodGet && !s.rateLimiter.allow(ip) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, ip)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the rate limiter cleanup goroutine along with the
// listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
