// Package api exposes the analytics over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketlens/internal/dashboard"
	"marketlens/internal/logger"
	"marketlens/internal/market"
)

// Config wires the server.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	DefaultRange    market.Range
	Benchmark       string
	// Clock overrides the analysis anchor time, for tests.
	Clock func() time.Time

	Dashboard *dashboard.Service
	Source    market.Source
}

// Server is the HTTP front of the analytics engines. Backtests run as
// asynchronous jobs; everything else answers inline.
type Server struct {
	addr         string
	shutdown     time.Duration
	defaultRange market.Range
	benchmark    string
	clock        func() time.Time

	dash *dashboard.Service
	src  market.Source
	jobs *jobRegistry

	router *gin.Engine
}

// NewServer validates the config and registers the routes.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Dashboard == nil {
		return nil, fmt.Errorf("api: nil dashboard service")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("api: nil market source")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8085"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.DefaultRange == "" {
		cfg.DefaultRange = market.Range1Y
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:         cfg.Addr,
		shutdown:     cfg.ShutdownTimeout,
		defaultRange: cfg.DefaultRange,
		benchmark:    cfg.Benchmark,
		clock:        cfg.Clock,
		dash:         cfg.Dashboard,
		src:          cfg.Source,
		jobs:         newJobRegistry(cfg.Clock),
		router:       router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	api.GET("/analysis", s.handleAnalysis)
	api.GET("/momentum", s.handleMomentum)
	api.GET("/divergences", s.handleDivergences)
	api.GET("/profile", s.handleProfile)
	api.GET("/narrative", s.handleNarrative)
	api.GET("/chart", s.handleChart)
	api.POST("/watchlist", s.handleWatchlist)

	hedge := api.Group("/hedge")
	hedge.GET("/universe", s.handleHedgeUniverse)
	hedge.POST("/rank", s.handleHedgeRank)
	hedge.POST("/simulate", s.handleHedgeSimulate)

	pf := api.Group("/portfolio")
	pf.GET("/templates", s.handleTemplates)
	pf.POST("/generate", s.handleGenerate)
	pf.POST("/metrics", s.handleMetrics)
	pf.POST("/optimize", s.handleOptimize)
	pf.POST("/backtest", s.handleBacktestSubmit)
	pf.GET("/backtest/:id", s.handleBacktestStatus)

	api.GET("/jobs", s.handleJobs)
}

// rangeParam parses the optional ?range= query, defaulting to the server's
// configured range.
func (s *Server) rangeParam(c *gin.Context) (market.Range, error) {
	raw := c.Query("range")
	if raw == "" {
		return s.defaultRange, nil
	}
	return market.ParseRange(raw)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("api listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }
