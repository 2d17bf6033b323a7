// Package api provides the HTTP REST API for assembling DIDComm messages
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-didcomm/pkg/storage"
)

// Server represents the HTTP API server
type Server struct {
	store      *storage.MessageDB // nil when archiving is disabled
	router     *gin.Engine
	limiter    *RateLimiter
	log        logrus.FieldLogger
	config     *Config
	httpServer *http.Server
	startedAt  time.Time
}

// Config holds server configuration
type Config struct {
	Port         int
	EnableCORS   bool
	RateLimit    int // Requests per minute
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		EnableCORS:   true,
		RateLimit:    100,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewServer creates a new HTTP API server. store may be nil, in which case
// built messages are returned but not archived and the archive endpoints
// answer 503.
func NewServer(store *storage.MessageDB, config *Config, log logrus.FieldLogger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		store:     store,
		router:    gin.New(),
		limiter:   NewRateLimiter(config.RateLimit),
		log:       log,
		config:    config,
		startedAt: time.Now(),
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// CORS middleware
	if s.config.EnableCORS {
		s.router.Use(CORSMiddleware())
	}

	// Rate limiting
	s.router.Use(s.limiter.Middleware())

	// Request logging
	s.router.Use(LoggingMiddleware(s.log))

	// Error recovery
	s.router.Use(gin.Recovery())
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// API v1 group
	v1 := s.router.Group("/api/v1")
	{
		// Message endpoints
		messages := v1.Group("/messages")
		{
			messages.POST("/direct", s.handleCreateDirect)
			messages.POST("/key-sharing", s.handleCreateKeySharing)
			messages.POST("/media-sharing", s.handleCreateMediaSharing)
			messages.GET("", s.handleListMessages)
			messages.GET("/:id", s.handleGetMessage)
			messages.DELETE("/:id", s.handleDeleteMessage)
		}

		// Helper endpoints
		v1.POST("/media/hash", s.handleMediaHash)
		v1.POST("/keys", s.handleGenerateKey)
	}

	// Health check endpoint (outside versioning)
	s.router.GET("/health", s.handleHealth)
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.log.Infof("🌐 HTTP API server starting on port %d...", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation
	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.limiter.Close()
		return err
	}

	// Graceful shutdown
	s.log.Info("🛑 Shutting down HTTP API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.limiter.Close()
	return err
}

// Close releases background resources when the server was never started
func (s *Server) Close() {
	s.limiter.Close()
}
