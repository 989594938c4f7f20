// Package http is the command dispatcher: it turns JSON requests from the
// surrounding chat glue into ledger and projector calls.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	applog "donoboard/internal/log"
	"donoboard/internal/services"
)

type Server struct {
	http.Server

	ledger      *services.LedgerService
	publisher   *services.SnapshotPublisher
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.LedgerService, publisher *services.SnapshotPublisher) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      ledger,
		publisher:   publisher,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("/api/contributions", s.withMiddleware(s.handleContribution))
	mux.HandleFunc("/api/admin/donations/add", s.withMiddleware(s.handleAdminAdd))
	mux.HandleFunc("/api/admin/donations/subtract", s.withMiddleware(s.handleAdminSubtract))
	mux.HandleFunc("/api/admin/entrants/reset", s.withMiddleware(s.handleResetEntrant))
	mux.HandleFunc("/api/admin/reset", s.withMiddleware(s.handleResetAll))
	mux.HandleFunc("/api/leaderboard/all-time", s.withMiddleware(s.handleAllTimeBoard))
	mux.HandleFunc("/api/leaderboard/monthly", s.withMiddleware(s.handleMonthlyBoard))
	mux.HandleFunc("/healthz", s.handleHealth)

	return s
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

// withMiddleware applies request tagging, rate limiting and access logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := newRequestID()
		w.Header().Set("X-Request-ID", requestID)

		clientIP := clientIP(r)
		if !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path,
				applog.FieldRequestID, requestID)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		slog.InfoContext(r.Context(), "Request handled",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rec.status,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldRequestID, requestID)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func newRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
