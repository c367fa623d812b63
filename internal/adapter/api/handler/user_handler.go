package handler

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/usecase"
	"renterra/pkg/errors"
	"renterra/pkg/response"
)

type UserHandler struct {
	userUC *usecase.UserUseCase
}

func NewUserHandler(userUC *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUC: userUC,
	}
}

func (h *UserHandler) Me(c echo.Context) error {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	user, err := h.userUC.EnsureProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

type UpdateProfileRequest struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	uid, ok := c.Get("uid").(string)
	if !ok {
		return response.Error(c, errors.Unauthorized("User not authenticated", nil))
	}

	user, err := h.userUC.UpdateProfile(c.Request().Context(), uid, usecase.UpdateProfileInput{
		Username: req.Username,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

type RegisterFCMTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *UserHandler) RegisterFCMToken(c echo.Context) error {
	var req RegisterFCMTokenRequest
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

	if err := h.userUC.RegisterFCMToken(c.Request().Context(), uid, req.Token); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Token registered"})
}
