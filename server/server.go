package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NeurArk/ai-contract-guardian/config"
	"github.com/NeurArk/ai-contract-guardian/middleware"
)

// Server is the embedded mock Contract Guardian API, used by
// `guardian serve` for local development and by the end-to-end tests.
// It implements the same HTTP contract the hosted backend exposes,
// with a simulated analysis pipeline instead of the real engine.
type Server struct {
	cfg       config.ServerConfig
	uploadCfg config.UploadConfig
	store     *Store
	objects   ObjectStore
	router    *gin.Engine
}

// New creates a server from configuration. Documents are kept in memory
// unless a MinIO endpoint is configured.
func New(cfg *config.Config) (*Server, error) {
	s := &Server{
		cfg:       cfg.Server,
		uploadCfg: cfg.Upload,
		store:     NewStore(),
	}

	if cfg.Server.Minio.Endpoint != "" {
		objects, err := NewMinioStore(&cfg.Server.Minio)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		if err := objects.EnsureBucket(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket: %w", err)
		}
		s.objects = objects
	} else {
		s.objects = NewMemoryStore()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimit(100, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", s.register)
		api.POST("/auth/login", s.login)
	}

	protected := api.Group("/")
	protected.Use(middleware.Auth(s.cfg.JWTSecret))
	{
		protected.GET("/auth/me", s.me)
		protected.POST("/contracts/upload", s.uploadContract)
		protected.GET("/contracts", s.listContracts)
		protected.GET("/contracts/:id", s.getContract)
		protected.GET("/contracts/:id/status", s.getContractStatus)
		protected.GET("/contracts/:id/analysis", s.getContractAnalysis)
		protected.GET("/users/me/export", s.exportUserData)
		protected.DELETE("/users/me", s.deleteAccount)
	}

	s.router = router
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store exposes the in-memory state so tests can drive analysis
// transitions directly.
func (s *Server) Store() *Store {
	return s.store
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock server starting", "port", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down mock server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
