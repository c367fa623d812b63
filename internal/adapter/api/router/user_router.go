package router

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/adapter/api/handler"
	"renterra/internal/adapter/api/middleware"
)

func SetupUserRoutes(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	users := e.Group("/v1/users", authMiddleware.Authenticate)

	users.GET("/me", userHandler.Me)
	users.PATCH("/me", userHandler.UpdateProfile)
	users.POST("/me/fcm-token", userHandler.RegisterFCMToken)
}
