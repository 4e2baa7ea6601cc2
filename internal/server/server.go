// Package server provides the CareerPilot HTTP REST API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/events"
	"github.com/jonathan/careerpilot/internal/githubprofile"
	"github.com/jonathan/careerpilot/internal/metrics"
	"github.com/jonathan/careerpilot/internal/pipeline"
	"github.com/jonathan/careerpilot/internal/server/middleware"
	"github.com/jonathan/careerpilot/internal/server/ratelimit"
	"go.uber.org/zap"
)

const (
	defaultMaxUploadBytes = 20 << 20
	// maxJSONBytes bounds webhook and other JSON request bodies.
	maxJSONBytes = 1 << 20
	// recentActivityLimit is the number of candidates in the activity feed.
	recentActivityLimit = 6
	shutdownTimeout     = 30 * time.Second
)

// Config holds server configuration
type Config struct {
	Port           int
	AuthRequired   bool
	MaxUploadBytes int64
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Store       db.Store
	Pipeline    *pipeline.Pipeline
	Recruiters  *RecruiterService
	JWT         *JWTService
	GitHub      *githubprofile.Summarizer // nil disables enrichment
	Events      events.Publisher
	Metrics     *metrics.Metrics
	RateLimiter *ratelimit.Limiter
	Logger      *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       db.Store
	pipeline    *pipeline.Pipeline
	recruiters  *RecruiterService
	jwtService  *JWTService
	authHandler *AuthHandler
	github      *githubprofile.Summarizer
	events      events.Publisher
	metrics     *metrics.Metrics
	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger

	authRequired   bool
	maxUploadBytes int64
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Pipeline == nil {
		return nil, errors.New("server: store and pipeline are required")
	}
	if deps.Recruiters == nil || deps.JWT == nil {
		return nil, errors.New("server: recruiter service and JWT service are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ev := deps.Events
	if ev == nil {
		ev = events.Nop{}
	}
	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	s := &Server{
		store:          deps.Store,
		pipeline:       deps.Pipeline,
		recruiters:     deps.Recruiters,
		jwtService:     deps.JWT,
		github:         deps.GitHub,
		events:         ev,
		metrics:        deps.Metrics,
		rateLimiter:    limiter,
		logger:         logger.Named("http"),
		authRequired:   cfg.AuthRequired,
		maxUploadBytes: maxUpload,
	}
	s.authHandler = NewAuthHandler(s.recruiters, s.jwtService, s.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Candidate intake and lifecycle
	mux.Handle("POST /api/candidates/upload-resumes", s.recruiter(s.handleUploadResumes))
	mux.Handle("GET /api/candidates", s.recruiter(s.handleListCandidates))
	mux.Handle("PUT /api/candidates/{id}/email", s.recruiter(s.handleUpdateEmail))
	mux.Handle("POST /api/candidates/{id}/send-invite", s.recruiter(s.handleSendInvite))

	// Interview platform callback
	mux.HandleFunc("POST /api/webhooks/interview-completed", s.handleInterviewCompleted)

	// Jobs
	mux.Handle("POST /api/jobs", s.recruiter(s.handleCreateJob))
	mux.Handle("GET /api/jobs", s.recruiter(s.handleListJobs))
	mux.Handle("GET /api/jobs/{id}", s.recruiter(s.handleGetJob))
	mux.Handle("PUT /api/jobs/{id}", s.recruiter(s.handleUpdateJob))
	mux.Handle("PUT /api/jobs/{id}/toggle_active", s.recruiter(s.handleToggleJobActive))
	mux.Handle("POST /api/jobs/{id}/candidates/upload-resumes", s.recruiter(s.handleUploadJobResumes))
	mux.Handle("GET /api/jobs/{id}/candidates", s.recruiter(s.handleListJobCandidates))
	mux.Handle("POST /api/jobs/{id}/candidates/{cid}/send-invite", s.recruiter(s.handleSendJobInvite))

	// Dashboard
	mux.Handle("GET /api/dashboard/metrics", s.recruiter(s.handleDashboardMetrics))
	mux.Handle("GET /api/dashboard/activity/recent", s.recruiter(s.handleRecentActivity))

	// Candidate self-service
	mux.HandleFunc("POST /api/resume/analyze", s.handleAnalyzeResume)

	// Recruiter accounts
	mux.HandleFunc("POST /api/auth/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /api/auth/verify", s.authHandler.Verify)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // batch uploads parse every document before responding
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// recruiter wraps recruiter-only routes with bearer authentication when required.
func (s *Server) recruiter(h http.HandlerFunc) http.Handler {
	if !s.authRequired {
		return h
	}
	return middleware.RequireAuth(s.jwtService.AsTokenValidator())(h)
}

// Start serves until ctx is cancelled, then shuts down gracefully: in-flight
// requests finish, queued invite emails are drained and the event publisher
// is closed.
func (s *Server) Start(ctx context.Context) error {
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go s.recruiters.RunSweeper(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()

	if err := s.pipeline.Mailer().Wait(shutdownCtx); err != nil {
		s.logger.Warn("pending emails not delivered before shutdown", zap.Error(err))
	}
	if err := s.events.Close(); err != nil {
		s.logger.Warn("failed to close event publisher", zap.Error(err))
	}

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging logs each request and records its latency.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		// r.Pattern is filled in by the mux on this same request
		_, route, _ := strings.Cut(r.Pattern, " ")
		s.metrics.ObserveHTTP(r.Method, route, rec.status, elapsed)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(s.logger, w, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeError(s.logger, w, status, message)
}

// failure maps err to a status and writes it. Server errors are logged and
// their details withheld from the client.
func (s *Server) failure(w http.ResponseWriter, msg string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
		s.errorResponse(w, status, msg)
		return
	}
	s.errorResponse(w, status, err.Error())
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("error encoding JSON response", zap.Error(err))
	}
}

func writeError(logger *zap.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(logger, w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Only RemoteAddr is trusted; forwarding headers are ignored.
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
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID),
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
