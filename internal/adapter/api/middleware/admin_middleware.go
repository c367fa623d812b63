package middleware

import (
	"github.com/labstack/echo/v4"

	"renterra/internal/domain/repository"
	"renterra/pkg/errors"
	"renterra/pkg/response"
)

// AdminMiddleware gates the /v1/admin surface on the user record's role.
// Runs after Authenticate, so a missing uid means a wiring mistake, not a
// bad token.
type AdminMiddleware struct {
	userRepo repository.UserRepository
}

func NewAdminMiddleware(userRepo repository.UserRepository) *AdminMiddleware {
	return &AdminMiddleware{
		userRepo: userRepo,
	}
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := c.Get("uid").(string)
		if !ok {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			return response.Error(c, errors.Internal("Failed to load user record", err))
		}

		if user.Role != "admin" {
			return response.Error(c, errors.Forbidden("Admin privileges required", nil))
		}

		return next(c)
	}
}
