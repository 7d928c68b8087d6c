// Package api serves the CryptoLab JSON API over HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"

	"github.com/RowanDark/cryptolab/internal/config"
	"github.com/RowanDark/cryptolab/internal/logging"
	"github.com/RowanDark/cryptolab/internal/observability/metrics"
	"github.com/RowanDark/cryptolab/internal/service"
)

const shutdownTimeout = 5 * time.Second

// Config configures the HTTP API server.
type Config struct {
	HTTP config.HTTPConfig
	// MetricsPath mounts the Prometheus handler; empty disables it.
	MetricsPath string
	// Lab also supplies the metrics registry served at MetricsPath.
	Lab    *service.Lab
	Logger *logging.Logger
}

// Server exposes the analysis and cipher operations as JSON endpoints.
type Server struct {
	cfg        Config
	echo       *echo.Echo
	lab        *service.Lab
	logger     *logging.Logger
	metrics    *metrics.Metrics
	httpServer *http.Server
}

// NewServer constructs an API server using the provided configuration.
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return nil, errors.New("api address must be provided")
	}
	if cfg.Lab == nil {
		return nil, errors.New("lab is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		cfg:     cfg,
		echo:    e,
		lab:     cfg.Lab,
		logger:  cfg.Logger.WithComponent("http"),
		metrics: cfg.Lab.Metrics(),
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.ContextWithRequestID(req.Context(), id)))
		},
	}))
	e.Use(s.observe)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.Origins(),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	if cfg.HTTP.RateLimit > 0 {
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.HTTP.RateLimit),
			Burst:     cfg.HTTP.RateBurst,
			ExpiresIn: 3 * time.Minute,
		})
		e.Use(middleware.RateLimiter(store))
	}
	if cfg.HTTP.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.HTTP.BodyLimit))
	}
	if cfg.HTTP.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: cfg.HTTP.RequestTimeout,
		}))
	}

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/operations", s.handleOperations)

	api.POST("/frequency", handle(s.lab.Frequency))
	api.POST("/entropy", handle(s.lab.Entropy))
	api.POST("/patterns", handle(s.lab.Patterns))
	api.POST("/classify", handle(s.lab.Classify))

	api.POST("/caesar", handle(s.lab.Caesar))
	api.POST("/vigenere", handle(s.lab.Vigenere))
	api.POST("/base64", handle(s.lab.Base64))
	api.POST("/pipeline", handle(s.lab.Pipeline))

	if s.cfg.MetricsPath != "" && s.metrics != nil {
		s.echo.GET(s.cfg.MetricsPath, echo.WrapHandler(s.metrics.Handler()))
	}
}

// Handler returns the API handler, accepting both HTTP/1.1 and cleartext HTTP/2.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(s.echo, &http2.Server{})
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTP.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and blocks until the provided context is
// cancelled or a fatal error occurs.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info(ctx, "http api listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// observe logs and measures each request. Errors are handed to the error
// handler here so the final status is known.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		elapsed := time.Since(start)

		req := c.Request()
		status := c.Response().Status
		operation := strings.TrimPrefix(c.Path(), "/api/")
		if operation == "" {
			operation = "unmatched"
		}

		s.metrics.ObserveRequest("http", operation, strconv.Itoa(status), elapsed)
		if err != nil {
			s.metrics.ObserveError("http", operation, errorKind(err))
		}

		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error(req.Context(), "http request", append(fields, zap.Error(err))...)
		} else {
			s.logger.Info(req.Context(), "http request", fields...)
		}
		return nil
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, s.lab.Health())
}

func (s *Server) handleOperations(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"operations": s.lab.Operations()})
}
