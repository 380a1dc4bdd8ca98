package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/questlog/tablehall/internal/middleware"
)

type Deps struct {
	AuthHandler   *AuthHTTP
	TablesHandler *TablesHTTP
	AuthMW        *middleware.Auth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/auth/register", d.AuthHandler.Register)
	e.POST("/auth/login", d.AuthHandler.Login)
	e.POST("/auth/refresh", d.AuthHandler.Refresh)

	e.GET("/tables", d.TablesHandler.List)
	e.GET("/tables/search", d.TablesHandler.Search)
	e.GET("/tables/:id", d.TablesHandler.Get)
	e.GET("/tables/:id/sessions", d.TablesHandler.ListSessions)

	private := e.Group("")
	private.Use(d.AuthMW.RequireAuth)

	private.GET("/auth/me", d.AuthHandler.Me)
	private.POST("/auth/logout", d.AuthHandler.Logout)
	private.PUT("/auth/password", d.AuthHandler.UpdatePassword)

	private.POST("/tables", d.TablesHandler.Create)
	private.PATCH("/tables/:id", d.TablesHandler.Update)
	private.GET("/tables/:id/members", d.TablesHandler.ListMembers)
	private.DELETE("/tables/:id/members/me", d.TablesHandler.Leave)

	private.POST("/tables/:id/requests", d.TablesHandler.CreateRequest)
	private.GET("/tables/:id/requests", d.TablesHandler.ListRequests)
	private.POST("/requests/:id/accept", d.TablesHandler.AcceptRequest)
	private.POST("/requests/:id/reject", d.TablesHandler.RejectRequest)

	private.POST("/tables/:id/sessions", d.TablesHandler.ScheduleSession)
	private.PATCH("/sessions/:id", d.TablesHandler.UpdateSession)
	private.POST("/sessions/:id/cancel", d.TablesHandler.CancelSession)
	private.PUT("/sessions/:id/intent", d.TablesHandler.SetIntent)
	private.POST("/sessions/:id/checkin", d.TablesHandler.CheckIn)
}
