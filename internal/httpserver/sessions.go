package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/questlog/tablehall/internal/service"
)

func (h *TablesHTTP) ScheduleSession(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var cmd service.ScheduleSessionCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	session, err := h.Svc.ScheduleSession(c.Request().Context(), caller, tableID, cmd)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *TablesHTTP) UpdateSession(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var cmd service.UpdateSessionCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	session, err := h.Svc.UpdateSession(c.Request().Context(), caller, sessionID, cmd)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *TablesHTTP) CancelSession(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	session, err := h.Svc.CancelSession(c.Request().Context(), caller, sessionID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *TablesHTTP) ListSessions(c echo.Context) error {
	tableID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	sessions, err := h.Svc.ListSessions(c.Request().Context(), tableID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, sessions)
}

func (h *TablesHTTP) SetIntent(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var cmd service.SetIntentCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	intent, err := h.Svc.SetIntent(c.Request().Context(), caller, sessionID, cmd)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, intent)
}

func (h *TablesHTTP) CheckIn(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	sessionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	intent, err := h.Svc.CheckIn(c.Request().Context(), caller, sessionID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, intent)
}
