package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/questlog/tablehall/internal/middleware"
	"github.com/questlog/tablehall/internal/service"
)

type TablesHTTP struct {
	Svc *service.Tables
}

func callerID(c echo.Context) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	return id, nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *TablesHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := callerID(c)
	if err != nil {
		return err
	}

	var cmd service.CreateTableCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	table, err := h.Svc.CreateTable(ctx, caller, cmd)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, table)
}

func (h *TablesHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := callerID(c)
	if err != nil {
		return err
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var cmd service.UpdateTableCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	table, err := h.Svc.UpdateTable(ctx, caller, tableID, cmd)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

func (h *TablesHTTP) Get(c echo.Context) error {
	tableID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	table, err := h.Svc.GetTable(c.Request().Context(), tableID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

func (h *TablesHTTP) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	tables, err := h.Svc.ListTables(c.Request().Context(), limit, offset)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, tables)
}

func (h *TablesHTTP) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}
	from, _ := strconv.Atoi(c.QueryParam("from"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	total, tables, err := h.Svc.SearchTables(c.Request().Context(), query, from, size)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "tables": tables})
}

func (h *TablesHTTP) CreateRequest(c echo.Context) error {
	ctx := c.Request().Context()

	caller, err := callerID(c)
	if err != nil {
		return err
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var cmd service.CreateRequestCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	req, err := h.Svc.CreateRequest(ctx, caller, tableID, cmd)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *TablesHTTP) ListRequests(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	reqs, err := h.Svc.ListRequests(c.Request().Context(), caller, tableID, c.QueryParam("status"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *TablesHTTP) AcceptRequest(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	requestID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	req, err := h.Svc.AcceptRequest(c.Request().Context(), caller, requestID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *TablesHTTP) RejectRequest(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	requestID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	req, err := h.Svc.RejectRequest(c.Request().Context(), caller, requestID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *TablesHTTP) ListMembers(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	members, err := h.Svc.ListMembers(c.Request().Context(), caller, tableID)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *TablesHTTP) Leave(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	tableID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.LeaveTable(c.Request().Context(), caller, tableID); err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "left table"})
}
