// Package health exposes the monitoring HTTP endpoint.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/store"
)

// Server serves the health-check endpoint with uptime and store counters.
type Server struct {
	store   *store.Store
	logger  *logging.Logger
	srv     *http.Server
	started time.Time
}

func NewServer(st *store.Store, logger *logging.Logger, port int) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{store: st, logger: logger, started: time.Now()}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/", s.handleHealth)
	router.GET("/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) handleHealth(c *gin.Context) {
	stats, err := s.store.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"uptime_seconds":  int(time.Since(s.started).Seconds()),
		"total_users":     stats.TotalUsers,
		"total_downloads": stats.TotalDownloads,
		"today_downloads": stats.TodayDownloads,
	})
}

// Handler exposes the underlying handler; used by tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info("health endpoint listening", "addr", s.srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
