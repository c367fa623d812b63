package usecase

import (
	"time"
)

// RefundQuote is what a cancellation would return to the renter.
type RefundQuote struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// RefundCalculator computes refund eligibility from the rental dates and the
// current time. Pure: callers create the Refund record and move the rental.
type RefundCalculator interface {
	Quote(totalPrice float64, startDate, now time.Time) RefundQuote
}

// fullOrNothingCalculator is the current policy: a full refund when the
// cancellation lands at least the configured window before the start date,
// zero otherwise. Tiered bands can slot in behind the same interface.
type fullOrNothingCalculator struct {
	window time.Duration
}

func NewRefundCalculator(windowHours int64) RefundCalculator {
	return &fullOrNothingCalculator{
		window: time.Duration(windowHours) * time.Hour,
	}
}

func (c *fullOrNothingCalculator) Quote(totalPrice float64, startDate, now time.Time) RefundQuote {
	if startDate.Sub(now) >= c.window {
		return RefundQuote{Amount: totalPrice, Percentage: 100}
	}
	return RefundQuote{Amount: 0, Percentage: 0}
}
