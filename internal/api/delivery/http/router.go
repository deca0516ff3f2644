package http

import (
	"net/http"

	"golang-market-intel/internal/api/service"
	"golang-market-intel/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewRouter builds the Echo server with every read route registered.
func NewRouter(newsSvc service.NewsService, runSvc service.RunService, log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	apiV1 := e.Group("/api/v1")
	NewNewsHandler(newsSvc, log).RegisterRoutes(apiV1.Group("/news"))
	NewRunHandler(runSvc, log).RegisterRoutes(apiV1.Group("/runs"))
	return e
}
