package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Skotchmaster/restaurant_orders/services/order/internal/service"
	"github.com/labstack/echo/v4"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail logs a failed operation as "<op>_error" and converts err to the HTTP
// error returned to the client. Internal errors are not echoed back.
func fail(l *slog.Logger, op string, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		l.Error(op+"_error", "status", code, "reason", "internal error", "error", err)
		return echo.NewHTTPError(code, "internal error")
	}
	l.Warn(op+"_error", "status", code, "reason", err.Error())
	return echo.NewHTTPError(code, err.Error())
}

func identityError(l *slog.Logger, op string, err error) error {
	if errors.Is(err, errUnknownRole) {
		l.Warn(op+"_error", "status", http.StatusForbidden, "reason", "unknown role")
		return echo.NewHTTPError(http.StatusForbidden, "unknown role")
	}
	l.Warn(op+"_error", "status", http.StatusUnauthorized, "reason", "unauthorized", "error", err)
	return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
}
