// Package api exposes the workflow over HTTP/JSON.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/events"
)

// Server wires the store, the event bus and the auth secret into the gin
// handlers.
type Server struct {
	DB        *gorm.DB
	Bus       *events.Bus
	JWTSecret []byte
}

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB        *gorm.DB
	Bus       *events.Bus
	JWTSecret string
	Port      int
	Out       io.Writer
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("api: db is required")
	}
	if opts.JWTSecret == "" {
		return fmt.Errorf("api: jwt secret is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{DB: opts.DB, Bus: opts.Bus, JWTSecret: []byte(opts.JWTSecret)}
	s.registerRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Cascade API listening on :%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// Router builds a router without starting a listener, for tests.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	s.registerRoutes(router)
	return router
}
