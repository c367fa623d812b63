package entity

import (
	"time"
)

type RefundStatus string

const (
	RefundPending    RefundStatus = "pending"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
	RefundFailed     RefundStatus = "failed"
)

// Refund records money returned to a renter. Immutable once completed.
type Refund struct {
	ID         string       `json:"id" firestore:"id"`
	RentalID   string       `json:"rental_id" firestore:"rentalId"`
	RenterID   string       `json:"renter_id" firestore:"renterId"`
	PaymentRef string       `json:"payment_ref,omitempty" firestore:"paymentRef,omitempty"`
	Amount     float64      `json:"amount" firestore:"amount"`
	Percentage float64      `json:"percentage" firestore:"percentage"`
	Reason     string       `json:"reason" firestore:"reason"`
	Status     RefundStatus `json:"status" firestore:"status"`
	RefundRef  string       `json:"refund_ref,omitempty" firestore:"refundRef,omitempty"`
	CreatedAt  time.Time    `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time    `json:"updated_at" firestore:"updatedAt"`
}
