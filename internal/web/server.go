package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/metrics"
	"github.com/spigell/resume-screener/internal/report"
	"github.com/spigell/resume-screener/internal/screening"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	defaultMaxUploadMB = 20
	shutdownTimeout    = 10 * time.Second
)

// Screener runs a screening for uploaded resumes.
type Screener interface {
	Screen(ctx context.Context, job string, docs []screening.Document) (*screening.Run, error)
	Configured() bool
}

type Config struct {
	Service     string
	Version     string
	MaxUploadMB int64
}

// Server serves the upload form, the JSON API, health and metrics.
type Server struct {
	screener  Screener
	logger    *zap.Logger
	maxUpload int64
	router    *gin.Engine
}

func New(cfg Config, screener Screener, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = defaultMaxUploadMB
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"score":   func(v float64) string { return fmt.Sprintf("%.4f", v) },
		"heading": report.Heading,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		screener:  screener,
		logger:    logger,
		maxUpload: maxMB << 20,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = s.maxUpload
	r.SetHTMLTemplate(tmpl)

	NewHealthHandler(cfg.Service, cfg.Version, screener.Configured).RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/", s.index)
	r.POST("/", s.limitBody(), s.screenForm)

	v1 := r.Group("/api/v1")
	v1.POST("/screen", s.limitBody(), s.screenAPI)

	s.router = r

	return s, nil
}

// Handler returns the underlying router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
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

	s.logger.Info("shutting down", zap.String("reason", ctx.Err().Error()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(started)),
		)
	}
}
