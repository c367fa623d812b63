package handler

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/domain/entity"
	"renterra/internal/usecase"
	"renterra/pkg/errors"
	"renterra/pkg/response"
	"renterra/pkg/utils"
)

type DisputeHandler struct {
	disputeUC *usecase.DisputeUseCase
}

func NewDisputeHandler(disputeUC *usecase.DisputeUseCase) *DisputeHandler {
	return &DisputeHandler{
		disputeUC: disputeUC,
	}
}

type FileDisputeRequest struct {
	RentalID      string   `json:"rental_id" validate:"required"`
	Type          string   `json:"type" validate:"required,oneof=damage not_as_described late_return payment_issue other"`
	Description   string   `json:"description" validate:"required"`
	EstimatedCost float64  `json:"estimated_cost,omitempty"`
	PhotoURLs     []string `json:"photo_urls,omitempty"`
}

func (h *DisputeHandler) File(c echo.Context) error {
	var req FileDisputeRequest
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

	dispute, err := h.disputeUC.File(c.Request().Context(), uid, usecase.FileDisputeInput{
		RentalID:      req.RentalID,
		Type:          entity.DisputeType(req.Type),
		Description:   req.Description,
		EstimatedCost: req.EstimatedCost,
		PhotoURLs:     req.PhotoURLs,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, dispute)
}

type DisputeMessageRequest struct {
	Content   string   `json:"content" validate:"required"`
	PhotoURLs []string `json:"photo_urls,omitempty"`
}

func (h *DisputeHandler) CounterRespond(c echo.Context) error {
	var req DisputeMessageRequest
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

	dispute, err := h.disputeUC.CounterRespond(c.Request().Context(), uid, c.Param("id"), req.Content, req.PhotoURLs)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

func (h *DisputeHandler) AddMessage(c echo.Context) error {
	var req DisputeMessageRequest
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

	dispute, err := h.disputeUC.AddMessage(c.Request().Context(), uid, c.Param("id"), req.Content, req.PhotoURLs)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

type ProposeResolutionRequest struct {
	Type        string  `json:"type" validate:"required,oneof=full_refund partial_refund replacement repair_cost no_action other"`
	Amount      float64 `json:"amount,omitempty"`
	Description string  `json:"description" validate:"required"`
}

func (h *DisputeHandler) ProposeResolution(c echo.Context) error {
	var req ProposeResolutionRequest
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

	dispute, err := h.disputeUC.ProposeResolution(c.Request().Context(), uid, c.Param("id"), usecase.ProposeResolutionInput{
		Type:        entity.ProposalType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

type RespondToProposalRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason,omitempty"`
}

func (h *DisputeHandler) RespondToProposal(c echo.Context) error {
	var req RespondToProposalRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	dispute, err := h.disputeUC.RespondToProposal(c.Request().Context(), uid, c.Param("id"), c.Param("proposalId"), req.Accept, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

type EscalateRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *DisputeHandler) Escalate(c echo.Context) error {
	var req EscalateRequest
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

	dispute, err := h.disputeUC.Escalate(c.Request().Context(), uid, c.Param("id"), req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

func (h *DisputeHandler) Get(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	dispute, err := h.disputeUC.GetByID(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

func (h *DisputeHandler) List(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	pagination := utils.GetPaginationParams(c)
	status := entity.DisputeStatus(c.QueryParam("status"))

	disputes, total, err := h.disputeUC.List(c.Request().Context(), uid, status, pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, disputes, total, pagination.Page, pagination.PageSize)
}
