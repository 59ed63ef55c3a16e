package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"account-service/internal/application/command"
	"account-service/internal/application/interfaces"
	"account-service/internal/domain"
	"account-service/internal/infrastructure"
)

const readinessTimeout = 2 * time.Second

type Handler struct {
	users    interfaces.UserService
	uploads  interfaces.UploadService
	sessions *infrastructure.SessionManager
	logger   *slog.Logger
}

func NewHandler(users interfaces.UserService, uploads interfaces.UploadService, sessions *infrastructure.SessionManager, logger *slog.Logger) *Handler {
	return &Handler{
		users:    users,
		uploads:  uploads,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *Handler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", nil)
}

func (h *Handler) Login(c echo.Context) error {
	var cmd command.LoginUserCommand
	if err := c.Bind(&cmd); err != nil {
		return err
	}

	result, err := h.users.LoginUser(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}

	if err := h.sessions.Establish(c.Response(), c.Request(), result.UserId, result.Email); err != nil {
		return domain.NewSessionError("Server Error", err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c.Response(), c.Request()); err != nil {
		return domain.NewSessionError("Logout failed", err)
	}
	return c.JSON(http.StatusOK, command.MessageResult{Message: "User logged out successfully"})
}

func (h *Handler) CreateUser(c echo.Context) error {
	var cmd command.CreateUserCommand
	if err := c.Bind(&cmd); err != nil {
		return err
	}

	result, err := h.users.CreateUser(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListUsers(c echo.Context) error {
	result, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result.Result)
}

func (h *Handler) GetUser(c echo.Context) error {
	result, err := h.users.FindUserById(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result.Result)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	var cmd command.UpdateUserCommand
	if err := bindProfileUpdate(c, &cmd); err != nil {
		return err
	}
	cmd.Id = c.Param("id")

	result, err := h.users.UpdateUser(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result.Result)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	result, err := h.users.DeleteUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Upload accepts the multipart field "file". Any failure to read it is
// reported as a missing file.
func (h *Handler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.logger.Debug("no upload in request", "error", err)
		_, err = h.uploads.Upload(ctx, "", nil, 0, "")
		return err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return domain.NewServerError(err)
	}
	defer src.Close()

	result, err := h.uploads.Upload(ctx, fileHeader.Filename, src, fileHeader.Size, fileHeader.Header.Get(echo.HeaderContentType))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var cmd command.SendOTPCommand
	if err := c.Bind(&cmd); err != nil {
		return err
	}

	result, err := h.users.SendOTP(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	result, err := h.users.VerifyOTP(c.Request().Context(), req.command())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var cmd command.ChangePasswordCommand
	if err := c.Bind(&cmd); err != nil {
		return err
	}

	result, err := h.users.ChangePassword(c.Request().Context(), &cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	if err := h.users.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
