// Package server wires the admission-control gateway: the edge guard that
// runs before page rendering, the credential-resolving middleware around
// sensitive API handlers, and the administrator passcode exchange.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/dr-omr/tibrah-gateway/internal/auth"
	"github.com/dr-omr/tibrah-gateway/internal/config"
	"github.com/dr-omr/tibrah-gateway/internal/ratelimit"
	"github.com/dr-omr/tibrah-gateway/internal/routeguard"
)

// sessionCookie is the client-held session artifact carrier.
const sessionCookie = "tibrah_auth"

// Server represents the HTTP gateway
type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	limiter   ratelimit.Limiter
	resolver  *auth.Resolver
	verifier  *auth.Verifier
	guard     *routeguard.Guard
	version   string
}

// New creates a new gateway instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Initialize validator
	validate := validator.New()

	// Passcodes are opaque but must stay sane as a request field: printable,
	// bounded length
	validate.RegisterValidation("passcode", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) == 0 || len(value) > 128 {
			return false
		}
		for _, char := range value {
			if unicode.IsControl(char) {
				return false
			}
		}
		return true
	})

	// Select the rate-limit backend: shared Redis counters when configured,
	// otherwise per-instance in-memory counters
	var limiter ratelimit.Limiter
	if cfg.Redis.Address != "" {
		store := ratelimit.NewRedisStore(cfg.Redis.Address)
		limiter = store
		zlog.Info().Str("address", cfg.Redis.Address).Msg("Using Redis rate-limit store")
	} else {
		limiter = ratelimit.NewMemoryStore()
		zlog.Debug().Msg("Using in-process rate-limit store")
	}

	if cfg.Admin.Passcode == "" {
		zlog.Warn().Msg("ADMIN_PASSCODE is not set - admin login will always fail")
	}

	server := &Server{
		config:    cfg,
		logger:    zlog,
		validator: validate,
		limiter:   limiter,
		resolver:  auth.NewResolver(cfg.Admin.APISecret, cfg.Admin.PrimaryEmail()),
		verifier:  auth.NewVerifier(cfg.Admin.Passcode, cfg.Admin.APISecret),
		guard:     routeguard.New(cfg.Routes),
		version:   version,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.edgeGuardMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public admin passcode exchange (rate limited inside the handler)
	s.router.POST("/api/admin/login", s.adminLogin)

	// Authenticated API routes
	api := s.router.Group("/api")
	{
		api.GET("/auth/me", RequireAuth(s.resolver, s.logger), s.getClassification)

		// Admin-only endpoints (privileged token required)
		adminRoutes := api.Group("/admin")
		adminRoutes.Use(RequireAdmin(s.resolver, s.logger))
		{
			adminRoutes.GET("/status", s.adminStatus)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog.
// Every request gets a ULID request id, echoed to the client.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := ulid.Make().String()
		c.Writer.Header().Set("X-Request-Id", requestID)

		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "tibrah-gateway",
		"version":   s.version,
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	port := s.config.Server.Port

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Admission decisions complete in microseconds; the timeouts only bound
	// slow clients
	srv := &http.Server{
		Addr:              port,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("port", port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	// Release the Redis connection if that backend is in use
	if store, ok := s.limiter.(*ratelimit.RedisStore); ok {
		if err := store.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing Redis rate-limit store")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
