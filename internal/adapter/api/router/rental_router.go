package router

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/adapter/api/handler"
	"renterra/internal/adapter/api/middleware"
)

func SetupRentalRoutes(e *echo.Echo, rentalHandler *handler.RentalHandler, authMiddleware *middleware.AuthMiddleware) {
	rentals := e.Group("/v1/rentals", authMiddleware.Authenticate)

	rentals.POST("", rentalHandler.Request)
	rentals.GET("", rentalHandler.List)
	rentals.GET("/:id", rentalHandler.Get)
	rentals.GET("/:id/logs", rentalHandler.Logs)

	rentals.POST("/:id/approve", rentalHandler.Approve)
	rentals.POST("/:id/decline", rentalHandler.Decline)
	rentals.POST("/:id/pay", rentalHandler.Pay)
	rentals.POST("/:id/cancel", rentalHandler.Cancel)
	rentals.POST("/:id/initiate-completion", rentalHandler.InitiateCompletion)
	rentals.POST("/:id/confirm-return", rentalHandler.ConfirmReturn)
	rentals.POST("/:id/confirm-pickup-photos", rentalHandler.ConfirmPickupPhotos)
	rentals.POST("/:id/confirm-return-photos", rentalHandler.ConfirmReturnPhotos)
	rentals.POST("/:id/process-payout", rentalHandler.ProcessPayout)
}
