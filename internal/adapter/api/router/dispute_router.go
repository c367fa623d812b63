package router

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/adapter/api/handler"
	"renterra/internal/adapter/api/middleware"
)

func SetupDisputeRoutes(e *echo.Echo, disputeHandler *handler.DisputeHandler, authMiddleware *middleware.AuthMiddleware) {
	disputes := e.Group("/v1/disputes", authMiddleware.Authenticate)

	disputes.POST("", disputeHandler.File)
	disputes.GET("", disputeHandler.List)
	disputes.GET("/:id", disputeHandler.Get)

	disputes.POST("/:id/counter-response", disputeHandler.CounterRespond)
	disputes.POST("/:id/messages", disputeHandler.AddMessage)
	disputes.POST("/:id/proposals", disputeHandler.ProposeResolution)
	disputes.POST("/:id/proposals/:proposalId/respond", disputeHandler.RespondToProposal)
	disputes.POST("/:id/escalate", disputeHandler.Escalate)
}
