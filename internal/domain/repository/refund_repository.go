package repository

import (
	"context"

	"renterra/internal/domain/entity"
)

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.Refund) error
	GetByID(ctx context.Context, id string) (*entity.Refund, error)

	// Update rejects writes to a refund that already reached completed.
	Update(ctx context.Context, refund *entity.Refund) error

	ListByRentalID(ctx context.Context, rentalID string) ([]*entity.Refund, error)
}
