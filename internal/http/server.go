// Package http exposes the JSON API: entity CRUD, reports and file exports.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"deltafin/internal/log"
	"deltafin/internal/sheets"
	"deltafin/internal/state"
)

type Server struct {
	http.Server
	container   *state.Container
	exporter    *sheets.Client
	logger      *log.Logger
	rateLimiter *rateLimiter

	// Cached report payloads, purged on any write.
	reportCache *expirable.LRU[string, []byte]

	shutdownOnce sync.Once
	now          func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. exporter may be nil when the Sheets export is not configured.
func NewServer(addr string, container *state.Container, exporter *sheets.Client, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		container:   container,
		exporter:    exporter,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		reportCache: expirable.NewLRU[string, []byte](128, nil, 5*time.Minute),
		now:         time.Now,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/categories", s.secure(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.secure(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.secure(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.secure(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/transactions", s.secure(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.secure(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.secure(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.secure(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/goals", s.secure(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.secure(s.handleCreateGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.secure(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.secure(s.handleDeleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.secure(s.handleAddContribution))
	mux.HandleFunc("GET /api/goals/{id}/contributions", s.secure(s.handleListContributions))

	mux.HandleFunc("GET /api/reports/monthly", s.secure(s.handleMonthlyReport))
	mux.HandleFunc("GET /api/reports/categories", s.secure(s.handleCategoryReport))
	mux.HandleFunc("GET /api/reports/balance", s.secure(s.handleBalanceReport))
	mux.HandleFunc("GET /api/reports/goals/{id}", s.secure(s.handleGoalReport))

	mux.HandleFunc("GET /api/export/csv", s.secure(s.handleExportCSV))
	mux.HandleFunc("GET /api/export/pdf", s.secure(s.handleExportPDF))
	mux.HandleFunc("GET /api/export/xlsx", s.secure(s.handleExportXLSX))
	mux.HandleFunc("POST /api/export/sheets", s.secure(s.handleExportSheets))

	return s
}

// secure adds security headers, rate limiting and request logging.
func (s *Server) secure(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		logger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		// Rate-limit writes only; list and report reads are cheap.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		log.LogHTTPEnd(ctx, logger, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// invalidateReports drops all cached report payloads after a write.
func (s *Server) invalidateReports() {
	s.reportCache.Purge()
}

// cachedReport returns the cached payload for key, or builds and caches it.
func (s *Server) cachedReport(key string, build func() ([]byte, error)) ([]byte, error) {
	if data, ok := s.reportCache.Get(key); ok {
		return data, nil
	}
	data, err := build()
	if err != nil {
		return nil, err
	}
	s.reportCache.Add(key, data)
	return data, nil
}

// Shutdown gracefully shuts down the server and cleanup routines.
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

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
