package handler

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/domain/entity"
	"renterra/internal/usecase"
	"renterra/pkg/errors"
	"renterra/pkg/response"
	"renterra/pkg/utils"
)

type ItemHandler struct {
	itemUC *usecase.ItemUseCase
}

func NewItemHandler(itemUC *usecase.ItemUseCase) *ItemHandler {
	return &ItemHandler{
		itemUC: itemUC,
	}
}

type CreateItemRequest struct {
	Title          string                 `json:"title" validate:"required"`
	Description    string                 `json:"description,omitempty"`
	Category       string                 `json:"category,omitempty"`
	DailyRate      float64                `json:"daily_rate" validate:"required,min=0"`
	Currency       string                 `json:"currency,omitempty"`
	DepositAmount  float64                `json:"deposit_amount,omitempty"`
	InsuranceTiers []entity.InsuranceTier `json:"insurance_tiers,omitempty"`
	Photos         []entity.ItemPhoto     `json:"photos,omitempty"`
}

func (h *ItemHandler) Create(c echo.Context) error {
	var req CreateItemRequest
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

	item, err := h.itemUC.Create(c.Request().Context(), uid, usecase.CreateItemInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		DailyRate:      req.DailyRate,
		Currency:       req.Currency,
		DepositAmount:  req.DepositAmount,
		InsuranceTiers: req.InsuranceTiers,
		Photos:         req.Photos,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

func (h *ItemHandler) Get(c echo.Context) error {
	item, err := h.itemUC.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

type UpdateItemRequest struct {
	Title         string  `json:"title,omitempty"`
	Description   string  `json:"description,omitempty"`
	DailyRate     float64 `json:"daily_rate,omitempty"`
	DepositAmount float64 `json:"deposit_amount,omitempty"`
	Status        string  `json:"status,omitempty" validate:"omitempty,oneof=active unlisted"`
}

func (h *ItemHandler) Update(c echo.Context) error {
	var req UpdateItemRequest
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

	item, err := h.itemUC.Update(c.Request().Context(), uid, c.Param("id"), usecase.UpdateItemInput{
		Title:         req.Title,
		Description:   req.Description,
		DailyRate:     req.DailyRate,
		DepositAmount: req.DepositAmount,
		Status:        req.Status,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) Delete(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	if err := h.itemUC.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Item deleted"})
}

func (h *ItemHandler) ListMine(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	pagination := utils.GetPaginationParams(c)

	items, total, err := h.itemUC.ListByOwner(c.Request().Context(), uid, pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}
