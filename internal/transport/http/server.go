// Package statushttp serves the read-only status API and the trades
// report page. It exposes state; every mutation goes through the loops.
package statushttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sarraf/internal/logger"
	"sarraf/internal/store"

	"github.com/gin-gonic/gin"
)

type Server struct {
	addr   string
	router *gin.Engine
}

type ServerConfig struct {
	Addr    string
	Signals store.SignalStore
	Events  store.EventStore
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Signals == nil {
		return nil, errors.New("status http server requires a signal store")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8880"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	h := &handlers{signals: cfg.Signals, events: cfg.Events}
	router.GET("/healthz", h.handleHealth)
	api := router.Group("/api")
	api.GET("/health", h.handleHealth)
	api.GET("/signals", h.handleSignals)
	api.GET("/signals/:id", h.handleSignalDetail)
	router.GET("/report", h.handleReport)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("status http listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}
