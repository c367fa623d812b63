package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"renterra/internal/domain/entity"
	"renterra/internal/usecase"
	"renterra/pkg/errors"
	"renterra/pkg/response"
	"renterra/pkg/utils"
)

type RentalHandler struct {
	rentalUC     *usecase.RentalUseCase
	settlementUC *usecase.SettlementUseCase
}

func NewRentalHandler(rentalUC *usecase.RentalUseCase, settlementUC *usecase.SettlementUseCase) *RentalHandler {
	return &RentalHandler{
		rentalUC:     rentalUC,
		settlementUC: settlementUC,
	}
}

type RequestRentalRequest struct {
	ItemID        string    `json:"item_id" validate:"required"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	InsuranceTier string    `json:"insurance_tier,omitempty"`
}

func (h *RentalHandler) Request(c echo.Context) error {
	var req RequestRentalRequest
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

	rental, err := h.rentalUC.Request(c.Request().Context(), uid, usecase.RequestRentalInput{
		ItemID:        req.ItemID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		InsuranceTier: req.InsuranceTier,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, rental)
}

func (h *RentalHandler) Approve(c echo.Context) error {
	return h.simpleTransition(c, h.rentalUC.Approve)
}

func (h *RentalHandler) Decline(c echo.Context) error {
	return h.simpleTransition(c, h.rentalUC.Decline)
}

func (h *RentalHandler) Pay(c echo.Context) error {
	return h.simpleTransition(c, h.rentalUC.Pay)
}

type CancelRentalRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *RentalHandler) Cancel(c echo.Context) error {
	var req CancelRentalRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	rental, err := h.rentalUC.Cancel(c.Request().Context(), uid, c.Param("id"), req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, rental)
}

func (h *RentalHandler) InitiateCompletion(c echo.Context) error {
	return h.simpleTransition(c, h.rentalUC.InitiateCompletion)
}

func (h *RentalHandler) ConfirmReturn(c echo.Context) error {
	return h.simpleTransition(c, h.rentalUC.ConfirmReturn)
}

func (h *RentalHandler) ConfirmPickupPhotos(c echo.Context) error {
	return h.simpleTransition(c, h.rentalUC.ConfirmPickupPhotos)
}

func (h *RentalHandler) ConfirmReturnPhotos(c echo.Context) error {
	return h.simpleTransition(c, h.rentalUC.ConfirmReturnPhotos)
}

// ProcessPayout polls the settlement coordinator. Not yet eligible or
// frozen payouts come back as a structured result, not an error.
func (h *RentalHandler) ProcessPayout(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	rental, err := h.rentalUC.GetByID(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	if rental.OwnerID != uid {
		return response.Error(c, errors.InvalidActor("Only the owner can request a payout"))
	}

	result, err := h.settlementUC.CheckAndSettle(c.Request().Context(), rental.ID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *RentalHandler) Get(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	rental, err := h.rentalUC.GetByID(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, rental)
}

func (h *RentalHandler) List(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	pagination := utils.GetPaginationParams(c)
	role := c.QueryParam("role")
	status := entity.RentalStatus(c.QueryParam("status"))

	rentals, total, err := h.rentalUC.List(c.Request().Context(), uid, role, status, pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, rentals, total, pagination.Page, pagination.PageSize)
}

func (h *RentalHandler) Logs(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	logs, err := h.rentalUC.ListLogs(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, logs)
}

func (h *RentalHandler) simpleTransition(c echo.Context, fn func(ctx context.Context, uid, rentalID string) (*entity.Rental, error)) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	rental, err := fn(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, rental)
}
