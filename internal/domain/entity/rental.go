package entity

import (
	"time"
)

// RentalStatus is the closed set of lifecycle states. Transitions are
// enforced in the usecase layer; nothing outside that layer writes Status.
type RentalStatus string

const (
	RentalPending                RentalStatus = "pending"
	RentalApproved               RentalStatus = "approved"
	RentalDeclined               RentalStatus = "declined"
	RentalActive                 RentalStatus = "active"
	RentalPendingCompletion      RentalStatus = "pending_completion"
	RentalCompletedPendingPayout RentalStatus = "completed_pending_payout"
	RentalCompleted              RentalStatus = "completed"
	RentalCancelled              RentalStatus = "cancelled"
)

// IsTerminal reports whether no further transition may leave this status.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalCompleted || s == RentalCancelled || s == RentalDeclined
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type DepositStatus string

const (
	DepositPending      DepositStatus = "pending"
	DepositHeld         DepositStatus = "held"
	DepositReleased     DepositStatus = "released"
	DepositPartialClaim DepositStatus = "partial_claim"
	DepositFullClaim    DepositStatus = "full_claim"
)

type Rental struct {
	ID       string `json:"id" firestore:"id"`
	ItemID   string `json:"item_id" firestore:"itemId"`
	OwnerID  string `json:"owner_id" firestore:"ownerId"`
	RenterID string `json:"renter_id" firestore:"renterId"`

	StartDate time.Time `json:"start_date" firestore:"startDate"`
	EndDate   time.Time `json:"end_date" firestore:"endDate"`

	TotalPrice float64 `json:"total_price" firestore:"totalPrice"`
	Currency   string  `json:"currency" firestore:"currency"`

	DepositAmount float64       `json:"deposit_amount,omitempty" firestore:"depositAmount,omitempty"`
	DepositStatus DepositStatus `json:"deposit_status,omitempty" firestore:"depositStatus,omitempty"`
	DepositID     string        `json:"deposit_id,omitempty" firestore:"depositId,omitempty"`

	InsuranceTier     string  `json:"insurance_tier,omitempty" firestore:"insuranceTier,omitempty"`
	InsurancePremium  float64 `json:"insurance_premium,omitempty" firestore:"insurancePremium,omitempty"`
	InsuranceCoverage float64 `json:"insurance_coverage,omitempty" firestore:"insuranceCoverage,omitempty"`

	Status        RentalStatus  `json:"status" firestore:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" firestore:"paymentStatus"`

	OwnerConfirmedPickupPhotos  bool `json:"owner_confirmed_pickup_photos" firestore:"ownerConfirmedPickupPhotos"`
	RenterConfirmedPickupPhotos bool `json:"renter_confirmed_pickup_photos" firestore:"renterConfirmedPickupPhotos"`
	OwnerConfirmedReturnPhotos  bool `json:"owner_confirmed_return_photos" firestore:"ownerConfirmedReturnPhotos"`
	RenterConfirmedReturnPhotos bool `json:"renter_confirmed_return_photos" firestore:"renterConfirmedReturnPhotos"`
	RenterConfirmedReturn       bool `json:"renter_confirmed_return" firestore:"renterConfirmedReturn"`

	// PayoutEligibleAt is set exactly once, when the renter confirms the
	// return, and is never moved earlier. PayoutFrozen may only be true
	// while Status == completed_pending_payout.
	PayoutEligibleAt *time.Time `json:"payout_eligible_at,omitempty" firestore:"payoutEligibleAt,omitempty"`
	PayoutFrozen     bool       `json:"payout_frozen" firestore:"payoutFrozen"`

	PaymentRef  string `json:"payment_ref,omitempty" firestore:"paymentRef,omitempty"`
	TransferRef string `json:"transfer_ref,omitempty" firestore:"transferRef,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty" firestore:"cancellationReason,omitempty"`

	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" firestore:"updatedAt"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty" firestore:"approvedAt,omitempty"`
	PaymentAt   *time.Time `json:"payment_at,omitempty" firestore:"paymentAt,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" firestore:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" firestore:"cancelledAt,omitempty"`
	DeclinedAt  *time.Time `json:"declined_at,omitempty" firestore:"declinedAt,omitempty"`
}

// RentalLog is the append-only audit trail of transition attempts.
type RentalLog struct {
	ID       string       `json:"id" firestore:"id"`
	RentalID string       `json:"rental_id" firestore:"rentalId"`
	Status   RentalStatus `json:"status" firestore:"status"`
	Action   string       `json:"action" firestore:"action"`
	Notes    string       `json:"notes,omitempty" firestore:"notes,omitempty"`
	ActorID  string       `json:"actor_id" firestore:"actorId"`
	CreatedAt time.Time   `json:"created_at" firestore:"createdAt"`
}
