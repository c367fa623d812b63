package repository

import (
	"context"
	"time"

	"renterra/internal/domain/entity"
)

type RentalRepository interface {
	Create(ctx context.Context, rental *entity.Rental) error
	GetByID(ctx context.Context, id string) (*entity.Rental, error)

	// UpdateTx applies fn to the rental inside a single store transaction:
	// the document is re-read, fn verifies the source state and mutates it,
	// and the write lands atomically. Two racing callers cannot both leave
	// the same source state. If fn returns an error nothing is written.
	UpdateTx(ctx context.Context, id string, fn func(*entity.Rental) error) (*entity.Rental, error)

	ListByUserID(ctx context.Context, userID, role string, status entity.RentalStatus, limit, offset int) ([]*entity.Rental, int64, error)

	// ListPayoutCandidates returns rentals sitting in completed_pending_payout
	// whose eligibility timestamp is at or before the given instant.
	ListPayoutCandidates(ctx context.Context, before time.Time, limit int) ([]*entity.Rental, error)

	CreateLog(ctx context.Context, log *entity.RentalLog) error
	ListLogsByRentalID(ctx context.Context, rentalID string) ([]*entity.RentalLog, error)
}
