package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/cvmaker/internal/config"
	"github.com/jonathan/cvmaker/internal/db"
	"github.com/jonathan/cvmaker/internal/document"
	"github.com/jonathan/cvmaker/internal/server/middleware"
	"github.com/jonathan/cvmaker/internal/server/ratelimit"
	"github.com/jonathan/cvmaker/internal/types"
)

// sessionIdleTimeout is how long an unused editor session is kept.
const sessionIdleTimeout = 2 * time.Hour

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	cfg         *config.ServerConfig
	db          *db.DB
	resumes     ResumeRepository
	documents   *document.Service
	sessions    *sessionRegistry
	rateLimiter *ratelimit.Limiter
	validator   middleware.TokenValidator
	metrics     *metrics
	stopEvict   chan struct{}
}

// Deps are the collaborators of a Server. Nil Resumes disables persistence.
type Deps struct {
	Resumes ResumeRepository
	Engine  document.Engine
}

// New creates a server from configuration, connecting to the database when one
// is configured and launching Chrome for exports.
func New(cfg *config.ServerConfig) (*Server, error) {
	deps := Deps{Engine: &document.ChromeEngine{ExecPath: cfg.ChromePath, Verbose: cfg.Verbose}}

	var database *db.DB
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var err error
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		deps.Resumes = database
	} else {
		log.Printf("[SERVER] DATABASE_URL not set, resumes will not be persisted")
	}

	s, err := NewWithDeps(cfg, deps)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return nil, err
	}
	s.db = database
	return s, nil
}

// NewWithDeps creates a server around explicit collaborators.
func NewWithDeps(cfg *config.ServerConfig, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config is nil")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("document engine is nil")
	}

	s := &Server{
		cfg:       cfg,
		resumes:   deps.Resumes,
		sessions:  newSessionRegistry(deps.Resumes),
		validator: newTokenValidator(cfg.JWT),
		stopEvict: make(chan struct{}),
	}
	s.documents = document.NewService(deps.Engine, document.Config{
		MarkerTimeout:      cfg.MarkerTimeout,
		NetworkIdleTimeout: cfg.NetworkIdleTimeout,
		RenderTimeout:      cfg.RenderTimeout,
		StylesheetURL:      cfg.StylesheetURL,
		Verbose:            cfg.Verbose,
	})
	s.metrics = newMetrics(s.sessions.count)

	// Initialize rate limiter
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Exports launch a browser
		IdleTimeout:  60 * time.Second,
	}

	go s.evictSessions()
	return s, nil
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	requireAuth := middleware.AuthMiddleware(s.validator, s.cfg.CookieName)
	authed := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }
	optional := middleware.OptionalAuth(s.validator, s.cfg.CookieName)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.handler())

	// Document export
	mux.Handle("GET /api/generate-pdf", optional(http.HandlerFunc(s.handleExportSnapshot)))
	mux.HandleFunc("POST /api/generate-pdf", s.handleExportHTML)
	mux.HandleFunc("POST /api/v1/generate-pdf", s.handleExportHTML)

	// Persisted resumes, also under the versioned prefix
	for _, prefix := range []string{"", "/api/v1"} {
		mux.Handle("GET "+prefix+"/resumes", authed(s.handleListResumes))
		mux.Handle("POST "+prefix+"/resumes", authed(s.handleUpsertResume))
		mux.Handle("GET "+prefix+"/resumes/{id}", authed(s.handleGetResume))
		mux.Handle("DELETE "+prefix+"/resumes/{id}", authed(s.handleDeleteResume))
	}

	// Editor session
	mux.Handle("GET /editor", authed(s.handleEditorState))
	mux.Handle("PUT /editor/fields/{field}", authed(s.handleEditorSetField))
	mux.Handle("PUT /editor/contact/{channel}", authed(s.handleEditorSetContact))
	mux.Handle("PUT /editor/template", authed(s.handleEditorSetTemplate))
	mux.Handle("PUT /editor/picture", authed(s.handleEditorSetPicture))
	mux.Handle("DELETE /editor/picture", authed(s.handleEditorRemovePicture))
	mux.Handle("POST /editor/save", authed(s.handleEditorSave))
	mux.Handle("POST /editor/load/{id}", authed(s.handleEditorLoad))
	mux.Handle("POST /editor/work/{id}/responsibilities", authed(s.handleEditorAddResponsibility))
	mux.Handle("PUT /editor/work/{id}/responsibilities/{index}", authed(s.handleEditorUpdateResponsibility))
	mux.Handle("DELETE /editor/work/{id}/responsibilities/{index}", authed(s.handleEditorRemoveResponsibility))
	mux.Handle("POST /editor/{section}", authed(s.handleEditorAddEntry))
	mux.Handle("PATCH /editor/{section}/{id}", authed(s.handleEditorUpdateEntry))
	mux.Handle("DELETE /editor/{section}/{id}", authed(s.handleEditorRemoveEntry))

	// Preview
	mux.Handle("GET /profile/cvmaker", authed(s.handlePreviewPage))
	mux.Handle("GET /editor/document", authed(s.handleEditorDocument))

	return s.withRateLimit(s.withLogging(s.withCORS(s.withMetrics(mux))))
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[SERVER] starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[SERVER] error: %v", err)
		}
	}()

	<-stop
	log.Println("[SERVER] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("[SERVER] stopped")
	return nil
}

// Close releases background resources without touching the listener.
func (s *Server) Close() {
	select {
	case <-s.stopEvict:
		return
	default:
		close(s.stopEvict)
	}
	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Server) evictSessions() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.sessions.evictIdle(sessionIdleTimeout); n > 0 {
				log.Printf("[SERVER] evicted %d idle editor sessions", n)
			}
		case <-s.stopEvict:
			return
		}
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract client identifier (IP address)
		clientID := s.extractClientID(r)

		// Check rate limit
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			// Set rate limit headers
			s.setRateLimitHeaders(w, info)
			// Return 429 Too Many Requests
			s.rateLimitResponse(w, info)
			return
		}

		// Set rate limit headers for successful requests
		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "disabled"}
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			s.jsonResponse(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	s.jsonResponse(w, http.StatusOK, status)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[SERVER] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// envelopeResponse writes data inside the success envelope.
func envelopeResponse[T any](s *Server, w http.ResponseWriter, status int, data T) {
	s.jsonResponse(w, status, types.Success(data))
}

// envelopeError writes an error envelope whose status code follows the HTTP status.
func (s *Server) envelopeError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, types.Failure(statusCode(status), message))
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
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
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"rule":      info.Rule,
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	// Log rate limit hit
	log.Printf("[rate-limit] %s limit exceeded: Limit=%d Reset=%s",
		info.Rule, info.Limit, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
