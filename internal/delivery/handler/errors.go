package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"account-service/internal/domain"
	"account-service/internal/infrastructure"
)

type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler renders every failure as {"message": ...}. Server-side
// failures are logged and reported; their cause never reaches the client.
func NewHTTPErrorHandler(logger *slog.Logger, reporter *infrastructure.ErrorReporter) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := http.StatusInternalServerError, "Server Error"
		var httpErr *echo.HTTPError

		if de, ok := domain.AsError(err); ok {
			status, message = de.StatusCode(), de.Message
		} else if errors.As(err, &httpErr) {
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			} else {
				message = fmt.Sprint(httpErr.Message)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"error", err,
			)
			reporter.Capture(err, map[string]string{"route": c.Path()})
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, errorResponse{Message: message})
		}
		if writeErr != nil {
			logger.Error("failed to write error response", "error", writeErr)
		}
	}
}
