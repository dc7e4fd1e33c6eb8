// Package server exposes the analysis service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"loglens/internal/analyzer"
	"loglens/internal/config"
)

// Server wraps the gin engine with graceful shutdown helpers.
type Server struct {
	cfg    config.ServerConfig
	engine *gin.Engine
	svc    *analyzer.Service
}

// New constructs the HTTP server and registers all routes.
func New(cfg config.ServerConfig, svc *analyzer.Service) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:    cfg,
		engine: engine,
		svc:    svc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/providers", s.handleProviders)
	s.engine.GET("/models", s.handleModels)
	s.engine.POST("/models/refresh", s.handleRefreshModels)
	s.engine.GET("/samples", s.handleSamples)
	s.engine.POST("/analyze", s.handleAnalyze)
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the listener and shuts down when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Printf("[server] shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
