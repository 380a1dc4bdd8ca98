package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/questlog/tablehall/internal/domain"
	"github.com/questlog/tablehall/internal/logging"
)

// toHTTPError maps domain errors onto fixed status codes with generic
// messages. Everything unmapped is a 500 with an opaque body; the detail
// stays in the server log.
func toHTTPError(c echo.Context, err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrRefreshNotFound),
		errors.Is(err, domain.ErrRefreshUsed),
		errors.Is(err, domain.ErrRefreshExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")

	case errors.Is(err, domain.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")

	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")

	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrIntentExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case errors.Is(err, domain.ErrUnknownConstraint):
		logging.FromContext(c.Request().Context()).Error("unmapped_constraint", "error", err)
		return echo.NewHTTPError(http.StatusConflict, "conflicting state")

	case errors.Is(err, domain.ErrNotJoinable),
		errors.Is(err, domain.ErrPendingRequestExists),
		errors.Is(err, domain.ErrRequestNotPending),
		errors.Is(err, domain.ErrGMCannotLeave),
		errors.Is(err, domain.ErrSessionNotScheduled),
		errors.Is(err, domain.ErrNotAttending):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	logging.FromContext(c.Request().Context()).Error("internal_error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
