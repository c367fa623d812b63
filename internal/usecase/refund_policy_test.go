package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefundQuoteFullBeforeCutoff(t *testing.T) {
	calc := NewRefundCalculator(24)
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	quote := calc.Quote(120, start, start.Add(-30*time.Hour))

	assert.Equal(t, 120.0, quote.Amount)
	assert.Equal(t, 100.0, quote.Percentage)
}

func TestRefundQuoteExactlyAtCutoff(t *testing.T) {
	calc := NewRefundCalculator(24)
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	// The boundary itself still qualifies: exactly 24 hours out is a full
	// refund.
	quote := calc.Quote(200, start, start.Add(-24*time.Hour))

	assert.Equal(t, 200.0, quote.Amount)
	assert.Equal(t, 100.0, quote.Percentage)
}

func TestRefundQuoteInsideCutoff(t *testing.T) {
	calc := NewRefundCalculator(24)
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	quote := calc.Quote(200, start, start.Add(-23*time.Hour-59*time.Minute))

	assert.Equal(t, 0.0, quote.Amount)
	assert.Equal(t, 0.0, quote.Percentage)
}

func TestRefundQuoteAfterStart(t *testing.T) {
	calc := NewRefundCalculator(24)
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	quote := calc.Quote(200, start, start.Add(time.Hour))

	assert.Equal(t, 0.0, quote.Amount)
}

func TestRefundQuoteConfigurableWindow(t *testing.T) {
	calc := NewRefundCalculator(48)
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, calc.Quote(100, start, start.Add(-30*time.Hour)).Amount)
	assert.Equal(t, 100.0, calc.Quote(100, start, start.Add(-48*time.Hour)).Amount)
}
