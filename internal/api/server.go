package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/api/handlers"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/api/response"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/charts"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/metrics"
)

// Server represents the dashboard web server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	logger     *zap.Logger

	// Browser auto-open configuration
	openBrowser bool

	facade  handlers.Facade
	metrics *metrics.Requests
	limiter *rate.Limiter // nil when rendering is not limited
}

// Config holds configuration for the web server.
type Config struct {
	Port        int
	OpenBrowser bool    // Whether to auto-open browser on startup
	RenderRate  float64 // Chart and export requests per second; 0 disables the limit
	RenderBurst int
}

// DefaultConfig returns the default web server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:        8501,
		OpenBrowser: false,
	}
}

// NewServer creates a new server over the dashboard facade.
func NewServer(cfg *Config, facade handlers.Facade, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:      chi.NewRouter(),
		port:        cfg.Port,
		openBrowser: cfg.OpenBrowser,
		logger:      logger,
		facade:      facade,
		metrics:     metrics.NewRequests(1000),
	}
	if cfg.RenderRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RenderRate), max(cfg.RenderBurst, 1))
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// loggingMiddleware logs HTTP requests and records their latency per
// route pattern.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			duration := time.Since(start)
			s.metrics.Record(chi.RouteContext(r.Context()).RoutePattern(), ww.Status(), duration)
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", duration),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// rateLimit rejects requests with 429 once the render limiter is exhausted.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			response.Error(w, http.StatusTooManyRequests, errors.New("too many render requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the port and serves in a goroutine. Errors after a
// successful bind are logged.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	go func() {
		s.logger.Info("dashboard server starting", zap.Int("port", s.port))
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("dashboard server error", zap.Error(err))
		}
	}()

	// Open browser after short delay to ensure server is ready
	if s.openBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			url := s.URL()
			if err := charts.OpenInBrowser(url); err != nil {
				s.logger.Warn("failed to open browser", zap.Error(err))
			} else {
				s.logger.Info("opened browser", zap.String("url", url))
			}
		}()
	}

	return nil
}

// URL returns the local address of the dashboard page.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d/", s.port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down dashboard server")
	return s.httpServer.Shutdown(ctx)
}

// Metrics returns the request metrics registry.
func (s *Server) Metrics() *metrics.Requests {
	return s.metrics
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}
