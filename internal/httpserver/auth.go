package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/questlog/tablehall/internal/middleware"
	"github.com/questlog/tablehall/internal/models"
	"github.com/questlog/tablehall/internal/service"
)

type AuthHTTP struct {
	Svc *service.Auth
}

type authResponse struct {
	User         *models.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

func authResponseFrom(res *service.AuthResult) authResponse {
	return authResponse{
		User:         res.User,
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var cmd service.RegisterCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, cmd)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusCreated, authResponseFrom(res))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var cmd service.LoginCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, cmd)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, authResponseFrom(res))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, authResponseFrom(res))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	if err := h.Svc.Logout(ctx, userID); err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	user, err := h.Svc.Me(ctx, userID)
	if err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	var cmd service.UpdatePasswordCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdatePassword(ctx, userID, cmd); err != nil {
		return toHTTPError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
