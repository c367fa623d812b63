package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"renterra/internal/domain/entity"
	"renterra/internal/domain/repository"
	"renterra/internal/domain/service"
	"renterra/internal/infrastructure/notification"
	"renterra/pkg/errors"
	"renterra/pkg/logger"
)

// Settlement outcome reasons.
const (
	SettleReasonSettled        = "settled"
	SettleReasonAlreadySettled = "already_settled"
	SettleReasonFrozen         = "frozen"
	SettleReasonPending        = "pending"
)

// SettlementResult reports what a settlement attempt did. A rental that is
// frozen or still inside its hold is a normal condition, not an error.
type SettlementResult struct {
	Settled        bool           `json:"settled"`
	Reason         string         `json:"reason"`
	HoursRemaining float64        `json:"hours_remaining,omitempty"`
	Rental         *entity.Rental `json:"rental"`
}

// SettlementUseCase holds the payout-eligibility contract: funds move if and
// only if the hold has elapsed and no dispute froze the payout.
type SettlementUseCase struct {
	rentalRepo repository.RentalRepository
	gateway    service.PaymentGateway
	dispatcher *notification.Dispatcher

	now func() time.Time
}

func NewSettlementUseCase(
	rentalRepo repository.RentalRepository,
	gateway service.PaymentGateway,
	dispatcher *notification.Dispatcher,
) *SettlementUseCase {
	return &SettlementUseCase{
		rentalRepo: rentalRepo,
		gateway:    gateway,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// CheckAndSettle is the only mutating entry point. Safe to retry: a second
// call after success is a no-op, the transfer is idempotent per rental id.
func (uc *SettlementUseCase) CheckAndSettle(ctx context.Context, rentalID string) (*SettlementResult, error) {
	rental, err := uc.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.Status == entity.RentalCompleted {
		return &SettlementResult{Settled: false, Reason: SettleReasonAlreadySettled, Rental: rental}, nil
	}
	if rental.Status != entity.RentalCompletedPendingPayout {
		return nil, errors.InvalidSourceState(fmt.Sprintf("Cannot settle a rental in status %s", rental.Status))
	}
	if rental.PayoutFrozen {
		logger.Info("Settlement blocked by dispute freeze: rental=%s", rentalID)
		return &SettlementResult{Settled: false, Reason: SettleReasonFrozen, Rental: rental}, nil
	}

	now := uc.now()
	if rental.PayoutEligibleAt == nil || now.Before(*rental.PayoutEligibleAt) {
		remaining := 0.0
		if rental.PayoutEligibleAt != nil {
			remaining = rental.PayoutEligibleAt.Sub(now).Hours()
		}
		return &SettlementResult{
			Settled:        false,
			Reason:         SettleReasonPending,
			HoursRemaining: remaining,
			Rental:         rental,
		}, nil
	}

	// Transfer first, then stamp: a processor failure must leave the rental
	// in its prior state, and the transfer itself is idempotent per rental.
	transferRef, err := uc.gateway.Transfer(ctx, rental.OwnerID, rental.TotalPrice, rental.ID)
	if err != nil {
		procErr := errors.ProcessorFailure("Payout transfer failed", err)
		logger.Transition("rental", rentalID, "settle", "system", procErr)
		return nil, procErr
	}

	updated, err := uc.rentalRepo.UpdateTx(ctx, rentalID, func(r *entity.Rental) error {
		if r.Status == entity.RentalCompleted {
			return errAlreadyApplied
		}
		if r.Status != entity.RentalCompletedPendingPayout {
			return errors.InvalidSourceState(fmt.Sprintf("Rental moved to %s during settlement", r.Status))
		}
		if r.PayoutFrozen {
			return errors.PayoutFrozen("A dispute froze the payout during settlement")
		}

		completedAt := uc.now()
		r.Status = entity.RentalCompleted
		r.TransferRef = transferRef
		r.CompletedAt = &completedAt
		if r.DepositStatus == entity.DepositHeld {
			r.DepositStatus = entity.DepositReleased
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, errAlreadyApplied) {
			current, getErr := uc.rentalRepo.GetByID(ctx, rentalID)
			if getErr != nil {
				return nil, getErr
			}
			return &SettlementResult{Settled: false, Reason: SettleReasonAlreadySettled, Rental: current}, nil
		}
		if errors.Is(err, errors.CodePayoutFrozen) {
			current, getErr := uc.rentalRepo.GetByID(ctx, rentalID)
			if getErr != nil {
				return nil, getErr
			}
			return &SettlementResult{Settled: false, Reason: SettleReasonFrozen, Rental: current}, nil
		}
		logger.Transition("rental", rentalID, "settle", "system", err)
		return nil, err
	}

	logger.Transition("rental", rentalID, "settle", "system", nil)
	uc.appendLog(ctx, updated, transferRef)
	uc.emit(updated)

	return &SettlementResult{Settled: true, Reason: SettleReasonSettled, Rental: updated}, nil
}

// ProcessEligiblePayouts settles every rental whose hold has elapsed. The
// scheduler calls this periodically; the engine keeps no timer of its own.
func (uc *SettlementUseCase) ProcessEligiblePayouts(ctx context.Context) (int, error) {
	candidates, err := uc.rentalRepo.ListPayoutCandidates(ctx, uc.now(), 100)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, rental := range candidates {
		result, err := uc.CheckAndSettle(ctx, rental.ID)
		if err != nil {
			logger.Warn("Payout poll could not settle rental %s: %v", rental.ID, err)
			continue
		}
		if result.Settled {
			settled++
		}
	}

	if settled > 0 {
		logger.Info("Payout poll settled %d rental(s)", settled)
	}
	return settled, nil
}

func (uc *SettlementUseCase) appendLog(ctx context.Context, rental *entity.Rental, transferRef string) {
	log := &entity.RentalLog{
		RentalID: rental.ID,
		Status:   rental.Status,
		Action:   "settle",
		Notes:    "Payout transferred: " + transferRef,
		ActorID:  "system",
	}
	if err := uc.rentalRepo.CreateLog(ctx, log); err != nil {
		logger.Warn("Failed to write settlement log: rental=%s error=%v", rental.ID, err)
	}
}

func (uc *SettlementUseCase) emit(rental *entity.Rental) {
	if uc.dispatcher == nil {
		return
	}
	uc.dispatcher.Emit(entity.Event{
		Type:       entity.EventPayoutSettled,
		RentalID:   rental.ID,
		Recipients: []string{rental.OwnerID, rental.RenterID},
		Title:      "Rental completed",
		Body:       fmt.Sprintf("The payout of %.2f %s was released to the owner.", rental.TotalPrice, rental.Currency),
		OccurredAt: uc.now(),
	})
}
