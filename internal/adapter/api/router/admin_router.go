package router

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/adapter/api/handler"
	"renterra/internal/adapter/api/middleware"
)

func SetupAdminRoutes(e *echo.Echo, adminHandler *handler.AdminHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	admin := e.Group("/v1/admin", authMiddleware.Authenticate, adminMiddleware.AdminOnly)

	admin.PATCH("/disputes/:id", adminHandler.UpdateDispute)
	admin.POST("/rentals/:id/release-payout-hold", adminHandler.ReleasePayoutHold)
	admin.POST("/payouts/poll", adminHandler.RunPayoutPoll)
}
