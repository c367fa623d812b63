package router

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/adapter/api/handler"
	"renterra/internal/adapter/api/middleware"
)

func SetupItemRoutes(e *echo.Echo, itemHandler *handler.ItemHandler, authMiddleware *middleware.AuthMiddleware) {
	items := e.Group("/v1/items")

	items.GET("/:id", itemHandler.Get)

	items.POST("", itemHandler.Create, authMiddleware.Authenticate)
	items.GET("/mine", itemHandler.ListMine, authMiddleware.Authenticate)
	items.PATCH("/:id", itemHandler.Update, authMiddleware.Authenticate)
	items.DELETE("/:id", itemHandler.Delete, authMiddleware.Authenticate)
}
