package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"renterra/internal/domain/entity"
	"renterra/internal/domain/repository"
	"renterra/internal/domain/service"
	"renterra/internal/infrastructure/notification"
	"renterra/pkg/errors"
	"renterra/pkg/logger"
	"renterra/pkg/utils"
)

// errAlreadyApplied marks a transition that was already taken. The caller
// gets the current record back instead of an error.
var errAlreadyApplied = stderrors.New("transition already applied")

type RentalUseCase struct {
	rentalRepo repository.RentalRepository
	itemRepo   repository.ItemRepository
	userRepo   repository.UserRepository
	refundRepo repository.RefundRepository
	gateway    service.PaymentGateway
	refundCalc RefundCalculator
	dispatcher *notification.Dispatcher

	cancellationWindow time.Duration
	payoutHold         time.Duration

	now func() time.Time
}

func NewRentalUseCase(
	rentalRepo repository.RentalRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	refundRepo repository.RefundRepository,
	gateway service.PaymentGateway,
	refundCalc RefundCalculator,
	dispatcher *notification.Dispatcher,
	cancellationWindowHours, payoutHoldHours int64,
) *RentalUseCase {
	return &RentalUseCase{
		rentalRepo:         rentalRepo,
		itemRepo:           itemRepo,
		userRepo:           userRepo,
		refundRepo:         refundRepo,
		gateway:            gateway,
		refundCalc:         refundCalc,
		dispatcher:         dispatcher,
		cancellationWindow: time.Duration(cancellationWindowHours) * time.Hour,
		payoutHold:         time.Duration(payoutHoldHours) * time.Hour,
		now:                time.Now,
	}
}

type RequestRentalInput struct {
	ItemID        string
	StartDate     time.Time
	EndDate       time.Time
	InsuranceTier string
}

// Request creates a pending rental for an item on behalf of the renter.
func (uc *RentalUseCase) Request(ctx context.Context, renterID string, input RequestRentalInput) (*entity.Rental, error) {
	item, err := uc.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID == renterID {
		return nil, errors.BadRequest("Cannot rent your own item", nil)
	}
	if item.Status != "active" {
		return nil, errors.BadRequest("Item is not available", nil)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, errors.BadRequest("End date must be after start date", nil)
	}
	if input.StartDate.Before(uc.now()) {
		return nil, errors.BadRequest("Start date must be in the future", nil)
	}

	days := int(math.Ceil(input.EndDate.Sub(input.StartDate).Hours() / 24))
	if days < 1 {
		days = 1
	}
	totalPrice := item.DailyRate * float64(days)

	rental := &entity.Rental{
		ItemID:        item.ID,
		OwnerID:       item.OwnerID,
		RenterID:      renterID,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		TotalPrice:    totalPrice,
		Currency:      item.Currency,
		Status:        entity.RentalPending,
		PaymentStatus: entity.PaymentUnpaid,
	}

	if item.DepositAmount > 0 {
		rental.DepositAmount = item.DepositAmount
		rental.DepositStatus = entity.DepositPending
	}

	if input.InsuranceTier != "" {
		tier := findInsuranceTier(item.InsuranceTiers, input.InsuranceTier)
		if tier == nil {
			return nil, errors.BadRequest("Unknown insurance tier", nil)
		}
		rental.InsuranceTier = tier.Name
		rental.InsurancePremium = tier.Premium
		rental.InsuranceCoverage = tier.Coverage
		rental.TotalPrice += tier.Premium
	}

	if err := uc.rentalRepo.Create(ctx, rental); err != nil {
		return nil, err
	}

	uc.appendLog(ctx, rental, "request", renterID, "Rental requested")
	uc.emit(entity.EventRentalRequested, rental, []string{rental.OwnerID},
		"New rental request", fmt.Sprintf("Your item has a new rental request for %d day(s)", days))

	return rental, nil
}

// Approve moves a pending rental to approved. Owner only.
func (uc *RentalUseCase) Approve(ctx context.Context, ownerID, rentalID string) (*entity.Rental, error) {
	rental, err := uc.transition(ctx, rentalID, "approve", ownerID, func(r *entity.Rental) error {
		if r.OwnerID != ownerID {
			return errors.InvalidActor("Only the owner can approve a rental")
		}
		if r.Status == entity.RentalApproved {
			return errAlreadyApplied
		}
		if r.Status != entity.RentalPending {
			return errors.InvalidSourceState(fmt.Sprintf("Cannot approve a rental in status %s", r.Status))
		}

		now := uc.now()
		r.Status = entity.RentalApproved
		r.ApprovedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(entity.EventRentalApproved, rental, []string{rental.RenterID},
		"Rental approved", "The owner approved your request. Complete the payment to activate the rental.")
	return rental, nil
}

// Decline terminates a pending rental. No payment was collected, so no
// refund is created.
func (uc *RentalUseCase) Decline(ctx context.Context, ownerID, rentalID string) (*entity.Rental, error) {
	rental, err := uc.transition(ctx, rentalID, "decline", ownerID, func(r *entity.Rental) error {
		if r.OwnerID != ownerID {
			return errors.InvalidActor("Only the owner can decline a rental")
		}
		if r.Status == entity.RentalDeclined {
			return errAlreadyApplied
		}
		if r.Status != entity.RentalPending {
			return errors.InvalidSourceState(fmt.Sprintf("Cannot decline a rental in status %s", r.Status))
		}

		now := uc.now()
		r.Status = entity.RentalDeclined
		r.DeclinedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(entity.EventRentalDeclined, rental, []string{rental.RenterID},
		"Rental declined", "The owner declined your rental request.")
	return rental, nil
}

// Pay charges the renter and activates the rental. A processor failure
// surfaces as a retryable error and leaves the rental untouched.
func (uc *RentalUseCase) Pay(ctx context.Context, renterID, rentalID string) (*entity.Rental, error) {
	current, err := uc.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if current.RenterID != renterID {
		err := errors.InvalidActor("Only the renter can pay for a rental")
		logger.Transition("rental", rentalID, "pay", renterID, err)
		return nil, err
	}
	if current.Status == entity.RentalActive && current.PaymentStatus == entity.PaymentPaid {
		return current, nil
	}
	if current.Status != entity.RentalApproved {
		err := errors.InvalidSourceState(fmt.Sprintf("Cannot pay for a rental in status %s", current.Status))
		logger.Transition("rental", rentalID, "pay", renterID, err)
		return nil, err
	}
	if current.PaymentStatus != entity.PaymentUnpaid {
		err := errors.InvalidSourceState("Rental is already paid")
		logger.Transition("rental", rentalID, "pay", renterID, err)
		return nil, err
	}

	paymentRef, err := uc.gateway.Charge(ctx, renterID, current.TotalPrice, rentalID)
	if err != nil {
		procErr := errors.ProcessorFailure("Payment could not be collected", err)
		logger.Transition("rental", rentalID, "pay", renterID, procErr)
		return nil, procErr
	}

	rental, err := uc.transition(ctx, rentalID, "pay", renterID, func(r *entity.Rental) error {
		if r.Status != entity.RentalApproved || r.PaymentStatus != entity.PaymentUnpaid {
			return errors.InvalidSourceState("Rental changed while payment was processing")
		}

		now := uc.now()
		r.Status = entity.RentalActive
		r.PaymentStatus = entity.PaymentPaid
		r.PaymentRef = paymentRef
		r.PaymentAt = &now
		if r.DepositAmount > 0 {
			r.DepositStatus = entity.DepositHeld
		}
		return nil
	})
	if err != nil {
		// The charge went through but the rental moved on (e.g. a cancel
		// raced in from another device). Reverse the collected payment so
		// the renter is never left charged for a rental that was not
		// activated.
		logger.Warn("Reversing charge %s for rental %s: activation failed: %v", paymentRef, rentalID, err)
		uc.issueRefund(ctx, current, paymentRef, RefundQuote{Amount: current.TotalPrice, Percentage: 100}, "payment_reversal")
		return nil, err
	}

	uc.emit(entity.EventRentalPaid, rental, []string{rental.OwnerID},
		"Rental paid", "The renter completed payment. The rental is now active.")
	return rental, nil
}

// Cancel cancels an approved rental. Renter only, and only while the start
// date is at least the cancellation window away. A full refund is created
// on success.
func (uc *RentalUseCase) Cancel(ctx context.Context, renterID, rentalID, reason string) (*entity.Rental, error) {
	var quote RefundQuote
	var paymentRef string

	rental, err := uc.transition(ctx, rentalID, "cancel", renterID, func(r *entity.Rental) error {
		if r.RenterID != renterID {
			return errors.InvalidActor("Only the renter can cancel a rental")
		}
		if r.Status == entity.RentalCancelled {
			return errAlreadyApplied
		}
		if r.Status != entity.RentalApproved {
			return errors.InvalidSourceState(fmt.Sprintf("Cannot cancel a rental in status %s", r.Status))
		}

		now := uc.now()
		if r.StartDate.Sub(now) < uc.cancellationWindow {
			return errors.TimeGateNotSatisfied(fmt.Sprintf(
				"Cancellation window closed: rentals must be cancelled at least %.0f hours before the start date",
				uc.cancellationWindow.Hours()))
		}

		quote = uc.refundCalc.Quote(r.TotalPrice, r.StartDate, now)
		paymentRef = r.PaymentRef

		r.Status = entity.RentalCancelled
		r.CancellationReason = reason
		r.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if quote.Amount > 0 && rental.PaymentStatus == entity.PaymentPaid {
		uc.issueRefund(ctx, rental, paymentRef, quote, "cancellation")
	}

	uc.emit(entity.EventRentalCancelled, rental, []string{rental.OwnerID},
		"Rental cancelled", "The renter cancelled the rental before the cutoff.")
	return rental, nil
}

// InitiateCompletion marks the physical handoff back to the owner as begun.
// Owner only, and only once the rental period has ended. No money moves yet.
func (uc *RentalUseCase) InitiateCompletion(ctx context.Context, ownerID, rentalID string) (*entity.Rental, error) {
	rental, err := uc.transition(ctx, rentalID, "initiate_completion", ownerID, func(r *entity.Rental) error {
		if r.OwnerID != ownerID {
			return errors.InvalidActor("Only the owner can initiate completion")
		}
		if r.Status == entity.RentalPendingCompletion {
			return errAlreadyApplied
		}
		if r.Status != entity.RentalActive {
			return errors.InvalidSourceState(fmt.Sprintf("Cannot initiate completion for a rental in status %s", r.Status))
		}

		if uc.now().Before(r.EndDate) {
			return errors.TimeGateNotSatisfied("Rental is still in progress")
		}

		r.Status = entity.RentalPendingCompletion
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(entity.EventCompletionInitiated, rental, []string{rental.RenterID},
		"Return requested", "The owner marked the rental period as ended. Please confirm the return.")
	return rental, nil
}

// ConfirmReturn is the single point where the payout clock starts: the
// renter confirms the item went back, the eligibility timestamp is stamped
// once, and the rental enters the payout hold.
func (uc *RentalUseCase) ConfirmReturn(ctx context.Context, renterID, rentalID string) (*entity.Rental, error) {
	rental, err := uc.transition(ctx, rentalID, "confirm_return", renterID, func(r *entity.Rental) error {
		if r.RenterID != renterID {
			return errors.InvalidActor("Only the renter can confirm the return")
		}
		if r.Status == entity.RentalCompletedPendingPayout {
			return errAlreadyApplied
		}
		if r.Status != entity.RentalPendingCompletion {
			return errors.InvalidSourceState(fmt.Sprintf("Cannot confirm return for a rental in status %s", r.Status))
		}

		now := uc.now()
		r.RenterConfirmedReturn = true
		r.Status = entity.RentalCompletedPendingPayout
		if r.PayoutEligibleAt == nil {
			eligible := now.Add(uc.payoutHold)
			r.PayoutEligibleAt = &eligible
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(entity.EventReturnConfirmed, rental, []string{rental.OwnerID},
		"Return confirmed", fmt.Sprintf("The renter confirmed the return. Payout unlocks in %.0f hours unless a dispute is filed.", uc.payoutHold.Hours()))
	return rental, nil
}

// ConfirmPickupPhotos flags that a party uploaded and confirmed the handoff
// photos. Valid while the rental is active.
func (uc *RentalUseCase) ConfirmPickupPhotos(ctx context.Context, callerID, rentalID string) (*entity.Rental, error) {
	return uc.transition(ctx, rentalID, "confirm_pickup_photos", callerID, func(r *entity.Rental) error {
		if r.Status != entity.RentalActive {
			return errors.InvalidSourceState("Pickup photos can only be confirmed on an active rental")
		}
		switch callerID {
		case r.OwnerID:
			if r.OwnerConfirmedPickupPhotos {
				return errAlreadyApplied
			}
			r.OwnerConfirmedPickupPhotos = true
		case r.RenterID:
			if r.RenterConfirmedPickupPhotos {
				return errAlreadyApplied
			}
			r.RenterConfirmedPickupPhotos = true
		default:
			return errors.InvalidActor("Only the owner or renter can confirm pickup photos")
		}
		return nil
	})
}

// ConfirmReturnPhotos flags the return-side photo confirmation per party.
func (uc *RentalUseCase) ConfirmReturnPhotos(ctx context.Context, callerID, rentalID string) (*entity.Rental, error) {
	return uc.transition(ctx, rentalID, "confirm_return_photos", callerID, func(r *entity.Rental) error {
		if r.Status != entity.RentalActive && r.Status != entity.RentalPendingCompletion {
			return errors.InvalidSourceState("Return photos can only be confirmed on an in-progress rental")
		}
		switch callerID {
		case r.OwnerID:
			if r.OwnerConfirmedReturnPhotos {
				return errAlreadyApplied
			}
			r.OwnerConfirmedReturnPhotos = true
		case r.RenterID:
			if r.RenterConfirmedReturnPhotos {
				return errAlreadyApplied
			}
			r.RenterConfirmedReturnPhotos = true
		default:
			return errors.InvalidActor("Only the owner or renter can confirm return photos")
		}
		return nil
	})
}

// GetByID returns a rental to one of its parties or an admin caller.
func (uc *RentalUseCase) GetByID(ctx context.Context, callerID, rentalID string) (*entity.Rental, error) {
	rental, err := uc.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.OwnerID != callerID && rental.RenterID != callerID {
		caller, err := uc.userRepo.GetByID(ctx, callerID)
		if err != nil || caller.Role != "admin" {
			return nil, errors.Forbidden("You don't have permission to view this rental", nil)
		}
	}

	return rental, nil
}

// List returns the caller's rentals in the given role.
func (uc *RentalUseCase) List(ctx context.Context, callerID, role string, status entity.RentalStatus, page, limit int) ([]*entity.Rental, int64, error) {
	if role != "owner" && role != "renter" {
		role = "renter"
	}

	pagination := utils.NewPaginationParams(page, limit)
	return uc.rentalRepo.ListByUserID(ctx, callerID, role, status, pagination.PageSize, pagination.Offset)
}

// ListLogs returns the audit trail for a rental.
func (uc *RentalUseCase) ListLogs(ctx context.Context, callerID, rentalID string) ([]*entity.RentalLog, error) {
	if _, err := uc.GetByID(ctx, callerID, rentalID); err != nil {
		return nil, err
	}
	return uc.rentalRepo.ListLogsByRentalID(ctx, rentalID)
}

// transition runs fn as a conditional update and handles the idempotency
// contract: an already-applied transition returns the current record.
func (uc *RentalUseCase) transition(ctx context.Context, rentalID, action, actorID string, fn func(*entity.Rental) error) (*entity.Rental, error) {
	rental, err := uc.rentalRepo.UpdateTx(ctx, rentalID, fn)
	if stderrors.Is(err, errAlreadyApplied) {
		current, getErr := uc.rentalRepo.GetByID(ctx, rentalID)
		if getErr != nil {
			return nil, getErr
		}
		logger.Info("rental transition already applied: id=%s action=%s actor=%s", rentalID, action, actorID)
		return current, nil
	}

	logger.Transition("rental", rentalID, action, actorID, err)
	if err != nil {
		return nil, err
	}

	uc.appendLog(ctx, rental, action, actorID, "")
	return rental, nil
}

// issueRefund records the refund and pushes it through the gateway. A
// gateway failure leaves the record pending for a later retry.
func (uc *RentalUseCase) issueRefund(ctx context.Context, rental *entity.Rental, paymentRef string, quote RefundQuote, reason string) {
	refund := &entity.Refund{
		RentalID:   rental.ID,
		RenterID:   rental.RenterID,
		PaymentRef: paymentRef,
		Amount:     quote.Amount,
		Percentage: quote.Percentage,
		Reason:     reason,
		Status:     entity.RefundPending,
	}

	if err := uc.refundRepo.Create(ctx, refund); err != nil {
		logger.Error("Failed to record refund for rental %s: %v", rental.ID, err)
		return
	}

	refundRef, err := uc.gateway.Refund(ctx, paymentRef, quote.Amount)
	if err != nil {
		logger.Warn("Refund %s left pending, gateway error: %v", refund.ID, err)
		return
	}

	refund.Status = entity.RefundCompleted
	refund.RefundRef = refundRef
	if err := uc.refundRepo.Update(ctx, refund); err != nil {
		logger.Error("Failed to mark refund %s completed: %v", refund.ID, err)
		return
	}

	uc.emit(entity.EventRefundIssued, rental, []string{rental.RenterID},
		"Refund issued", fmt.Sprintf("A refund of %.2f %s is on its way.", quote.Amount, rental.Currency))
}

func (uc *RentalUseCase) appendLog(ctx context.Context, rental *entity.Rental, action, actorID, notes string) {
	log := &entity.RentalLog{
		RentalID: rental.ID,
		Status:   rental.Status,
		Action:   action,
		Notes:    notes,
		ActorID:  actorID,
	}
	if err := uc.rentalRepo.CreateLog(ctx, log); err != nil {
		logger.Warn("Failed to write rental log: rental=%s action=%s error=%v", rental.ID, action, err)
	}
}

func (uc *RentalUseCase) emit(eventType entity.EventType, rental *entity.Rental, recipients []string, title, body string) {
	if uc.dispatcher == nil {
		return
	}
	uc.dispatcher.Emit(entity.Event{
		Type:       eventType,
		RentalID:   rental.ID,
		Recipients: recipients,
		Title:      title,
		Body:       body,
		OccurredAt: uc.now(),
	})
}

func findInsuranceTier(tiers []entity.InsuranceTier, name string) *entity.InsuranceTier {
	for i := range tiers {
		if tiers[i].Name == name {
			return &tiers[i]
		}
	}
	return nil
}
