package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/reviewpulse/internal/models"
)

// ReviewService is what the HTTP handlers need from the processing layer.
type ReviewService interface {
	ScrapeToCSV(ctx context.Context, target string, count int, sort models.SortOrder, destination string) ([]string, error)
	AnalyzeGeneral(ctx context.Context, reviews []string) (*models.GeneralAnalysis, error)
	AnalyzeAspects(ctx context.Context, reviews []string, aspects []string) (*models.AspectAnalysis, error)
	Summarize(ctx context.Context, reviews []string) (string, error)
}

type Server struct {
	service       ReviewService
	workDir       string
	allowedOrigin string
	health        map[string]*atomic.Bool
}

type Option func(*Server)

// WithWorkDir sets where scraped review files are written.
func WithWorkDir(dir string) Option {
	return func(s *Server) { s.workDir = dir }
}

func WithAllowedOrigin(origin string) Option {
	return func(s *Server) { s.allowedOrigin = origin }
}

// WithHealth exposes a monitored backend on /healthz.
func WithHealth(name string, healthy *atomic.Bool) Option {
	return func(s *Server) { s.health[name] = healthy }
}

func NewServer(service ReviewService, opts ...Option) *Server {
	s := &Server{
		service: service,
		health:  make(map[string]*atomic.Bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), s.cors())

	router.GET("/healthz", s.healthz)
	router.POST("/scrape", s.scrape)
	router.POST("/analyze", s.analyze)
	router.POST("/summarize", s.summarize)

	return router
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[API] Listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("[API] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}
		slog.Info("[API] Request", attrs...)
	}
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (s.allowedOrigin == "*" || origin == s.allowedOrigin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) healthz(c *gin.Context) {
	backends := make(map[string]bool, len(s.health))
	status := http.StatusOK
	for name, healthy := range s.health {
		backends[name] = healthy.Load()
		if !backends[name] {
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "backends": backends})
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
}
