package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/adapters/in/http/openapi"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterOptions tune the echo instance built by NewRouter.
type RouterOptions struct {
	// OperationTimeout bounds every API request except streams. Zero disables it.
	OperationTimeout time.Duration
	// ValidateRequests enables validation against the OpenAPI document.
	ValidateRequests bool
	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the echo instance with middleware, health, metrics, swagger and the API.
func NewRouter(ctx context.Context, server *Server, logger *slog.Logger, opts RouterOptions) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger.With("component", "http_access")))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	var api []echo.MiddlewareFunc
	if opts.OperationTimeout > 0 {
		api = append(api, middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Skipper: isStream,
			Timeout: opts.OperationTimeout,
		}))
	}
	if opts.ValidateRequests {
		doc, err := openapi.Load(ctx)
		if err != nil {
			return nil, err
		}
		validator, err := openapi.RequestValidator(doc)
		if err != nil {
			return nil, err
		}
		api = append(api, validator)
	}

	server.RegisterRoutes(e, api...)
	return e, nil
}

func isStream(c echo.Context) bool {
	return strings.HasSuffix(c.Path(), "/stream")
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			logger.Log(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}
