// Package api serves describo over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/khanglvm/describo/internal/app"
	"github.com/khanglvm/describo/internal/logging"
	"github.com/khanglvm/describo/internal/metrics"
)

// maxAudioBytes caps uploaded voice clips.
const maxAudioBytes = 25 << 20

// Options configures the HTTP server.
type Options struct {
	Addr            string
	Metrics         bool
	ShutdownTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	svc    *app.Service
	opts   Options
	router *gin.Engine
	http   *http.Server
}

// NewServer builds the router. It does not listen until Run.
func NewServer(svc *app.Service, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{svc: svc, opts: opts}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(logging.GinLogger(), logging.GinRecovery())
	if s.opts.Metrics {
		metrics.Register()
		r.Use(metrics.Middleware())
		r.GET("/metrics", metrics.Handler())
	}

	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	v1.GET("/catalog", s.listCatalog)
	v1.GET("/examples", s.listExamples)

	v1.POST("/sessions", s.startSession)
	sess := v1.Group("/sessions/:id")
	sess.DELETE("", s.endSession)
	sess.POST("/search", s.search)
	sess.POST("/interactions", s.recordInteraction)
	sess.POST("/examples/:index", s.useExample)
	sess.POST("/products/:productID/view", s.viewProduct)
	sess.GET("/trust", s.trust)
	sess.POST("/transcribe", s.transcribe)
	sess.POST("/checkout", s.checkout)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.opts.Addr).Info("http server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	log.Info("http server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
