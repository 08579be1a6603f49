package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"segstats/app"
	"segstats/domain/core"
	"segstats/domain/stats"
	"segstats/internal"
	apperrors "segstats/internal/errors"
	"segstats/internal/metrics"

	"github.com/gin-gonic/gin"
)

// AnalysisService is the part of the segment analysis service the HTTP layer uses
type AnalysisService interface {
	Columns(ctx context.Context) ([]app.ColumnInfo, error)
	Segments(ctx context.Context) ([]core.SegmentKey, error)
	Shape(ctx context.Context, segment core.SegmentKey, alt stats.Alternative) (stats.ShapeReport, error)
	Variance(ctx context.Context, req app.GroupRequest) ([]stats.GroupTestResult, error)
	Ranks(ctx context.Context, req app.GroupRequest) ([]stats.GroupTestResult, error)
	Association(ctx context.Context, segment core.SegmentKey, target string) ([]stats.AssociationResult, error)
	Summary(ctx context.Context, segment core.SegmentKey) (*app.SegmentSummary, error)
	Report(ctx context.Context, req app.ReportRequest) (*app.Report, error)
}

// Server serves the analysis API
type Server struct {
	router   *gin.Engine
	handler  *AnalysisHandler
	metrics  *metrics.Metrics
	logger   *internal.Logger
	shutdown time.Duration
}

// NewServer wires the routes. metricsSink may be nil, in which case /metrics is not served.
func NewServer(service AnalysisService, metricsSink *metrics.Metrics, logger *internal.Logger) *Server {
	s := &Server{
		router:   gin.New(),
		handler:  NewAnalysisHandler(service, logger),
		metrics:  metricsSink,
		logger:   logger,
		shutdown: 10 * time.Second,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(requestLogger(s.logger))
	s.router.Use(gin.Recovery())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/columns", s.handler.Columns())
		api.GET("/segments", s.handler.Segments())
		api.GET("/shape", s.handler.Shape())
		api.GET("/variance", s.handler.Variance())
		api.GET("/ranks", s.handler.Ranks())
		api.GET("/association", s.handler.Association())
		api.GET("/summary", s.handler.Summary())
		api.GET("/report", s.handler.Report())
	}

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	s.router.NoRoute(func(c *gin.Context) {
		s.handler.respondError(c, "route", apperrors.NotFound("route "+c.Request.URL.Path))
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[Server] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
