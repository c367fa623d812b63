package repository

import (
	"context"

	"renterra/internal/domain/entity"
)

type DisputeRepository interface {
	// CreateWithFreeze writes the dispute and, when the referenced rental is
	// currently completed_pending_payout, flips its payoutFrozen flag in the
	// same store transaction. A dispute must never be recorded without its
	// freeze side effect taking effect if the rental qualifies. Returns
	// whether the payout was frozen.
	CreateWithFreeze(ctx context.Context, dispute *entity.Dispute) (bool, error)

	GetByID(ctx context.Context, id string) (*entity.Dispute, error)

	// UpdateTx applies fn to the dispute inside a single store transaction,
	// same contract as RentalRepository.UpdateTx.
	UpdateTx(ctx context.Context, id string, fn func(*entity.Dispute) error) (*entity.Dispute, error)

	ListByRentalID(ctx context.Context, rentalID string) ([]*entity.Dispute, error)
	ListByUserID(ctx context.Context, userID string, status entity.DisputeStatus, limit, offset int) ([]*entity.Dispute, int64, error)
}
