package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"account-service/internal/infrastructure"
)

type ServerOptions struct {
	Logger   *slog.Logger
	Reporter *infrastructure.ErrorReporter
	// Limiter, when set, rejects requests beyond its rate with 429.
	Limiter *rate.Limiter
}

// NewServer builds the echo instance with middleware, error handling and every
// route registered.
func NewServer(h *Handler, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newTemplateRenderer()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger, opts.Reporter)

	e.Use(requestLogger(opts.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if opts.Limiter != nil {
		e.Use(overloadGuard(opts.Limiter))
	}

	RegisterRoutes(e, h)
	return e
}

func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/", h.Index)
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)

	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)

	e.POST("/users", h.CreateUser)
	e.GET("/users", h.ListUsers)
	e.GET("/users/:id", h.GetUser)
	e.PUT("/users/:id", h.UpdateUser)
	e.DELETE("/users/:id", h.DeleteUser)

	e.POST("/upload", h.Upload)

	e.POST("/forgot-password", h.ForgotPassword)
	e.POST("/verify-otp", h.VerifyOTP)
	e.POST("/change-password", h.ChangePassword)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}

// overloadGuard applies one process-wide token bucket to all requests.
func overloadGuard(limiter *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
