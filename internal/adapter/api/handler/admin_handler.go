package handler

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/domain/entity"
	"renterra/internal/usecase"
	"renterra/pkg/errors"
	"renterra/pkg/response"
)

type AdminHandler struct {
	disputeUC    *usecase.DisputeUseCase
	settlementUC *usecase.SettlementUseCase
}

func NewAdminHandler(disputeUC *usecase.DisputeUseCase, settlementUC *usecase.SettlementUseCase) *AdminHandler {
	return &AdminHandler{
		disputeUC:    disputeUC,
		settlementUC: settlementUC,
	}
}

type AdminUpdateDisputeRequest struct {
	Status     string `json:"status" validate:"required,oneof=investigating resolved closed"`
	ResolvedBy string `json:"resolved_by,omitempty" validate:"omitempty,oneof=admin refund_issued no_action"`
	Notes      string `json:"notes,omitempty"`
}

func (h *AdminHandler) UpdateDispute(c echo.Context) error {
	var req AdminUpdateDisputeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	dispute, err := h.disputeUC.AdminUpdate(c.Request().Context(), uid, c.Param("id"), usecase.AdminUpdateInput{
		Status:     entity.DisputeStatus(req.Status),
		ResolvedBy: req.ResolvedBy,
		Notes:      req.Notes,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

// ReleasePayoutHold clears a dispute freeze on a rental. Separate from
// dispute resolution on purpose: an admin decides when the payout may flow.
func (h *AdminHandler) ReleasePayoutHold(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	rental, err := h.disputeUC.ReleasePayoutHold(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, rental)
}

// RunPayoutPoll triggers the eligibility sweep on demand, the same code
// path the cron scheduler exercises.
func (h *AdminHandler) RunPayoutPoll(c echo.Context) error {
	settled, err := h.settlementUC.ProcessEligiblePayouts(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"settled": settled,
	})
}
