package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renterra/internal/domain/entity"
	"renterra/pkg/errors"
)

func seedPayoutPending(f *fixture, id string, eligibleIn time.Duration) *entity.Rental {
	eligible := f.clock.Add(eligibleIn)
	rental := &entity.Rental{
		ID:               id,
		ItemID:           "item-1",
		OwnerID:          "owner-1",
		RenterID:         "renter-1",
		StartDate:        f.clock.Add(-96 * time.Hour),
		EndDate:          f.clock.Add(-48 * time.Hour),
		TotalPrice:       120,
		Currency:         "USD",
		Status:           entity.RentalCompletedPendingPayout,
		PaymentStatus:    entity.PaymentPaid,
		PaymentRef:       "pay-" + id,
		PayoutEligibleAt: &eligible,
	}
	f.addRental(rental)
	return rental
}

func TestSettleBeforeEligibility(t *testing.T) {
	f := newFixture()
	seedPayoutPending(f, "r1", 10*time.Hour)

	result, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)

	assert.False(t, result.Settled)
	assert.Equal(t, SettleReasonPending, result.Reason)
	assert.InDelta(t, 10.0, result.HoursRemaining, 0.01)
	assert.Equal(t, 0, f.gateway.transferCalls)
	assert.Equal(t, entity.RentalCompletedPendingPayout, f.rental("r1").Status)
}

func TestSettleAtEligibility(t *testing.T) {
	f := newFixture()
	seedPayoutPending(f, "r1", 0)

	result, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)

	assert.True(t, result.Settled)
	assert.Equal(t, SettleReasonSettled, result.Reason)
	assert.Equal(t, 1, f.gateway.transferCalls)

	got := f.rental("r1")
	assert.Equal(t, entity.RentalCompleted, got.Status)
	assert.Equal(t, "trf-r1", got.TransferRef)
	require.NotNil(t, got.CompletedAt)
}

func TestSettleIdempotent(t *testing.T) {
	f := newFixture()
	seedPayoutPending(f, "r1", -time.Hour)

	first, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)
	require.True(t, first.Settled)

	second, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)

	assert.False(t, second.Settled)
	assert.Equal(t, SettleReasonAlreadySettled, second.Reason)

	// Only one transfer ever reached the gateway.
	assert.Equal(t, "trf-r1", f.rental("r1").TransferRef)
	assert.Len(t, f.gateway.transfers, 1)
}

func TestSettleRacedCompletionReportsAlreadySettled(t *testing.T) {
	f := newFixture()
	seedPayoutPending(f, "r1", -time.Hour)

	// A concurrent settle stamps the rental completed while the transfer is
	// in flight; the loser must see the no-op result, not an error.
	f.gateway.onTransfer = func() {
		r := f.rental("r1")
		now := f.clock
		r.Status = entity.RentalCompleted
		r.TransferRef = "trf-r1"
		r.CompletedAt = &now
		f.addRental(r)
	}

	result, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)

	assert.False(t, result.Settled)
	assert.Equal(t, SettleReasonAlreadySettled, result.Reason)
	assert.Equal(t, entity.RentalCompleted, f.rental("r1").Status)
	assert.Equal(t, "trf-r1", f.rental("r1").TransferRef)
}

func TestSettleBlockedByFreeze(t *testing.T) {
	f := newFixture()
	rental := seedPayoutPending(f, "r1", -time.Hour)
	rental.PayoutFrozen = true
	f.addRental(rental)

	result, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)

	assert.False(t, result.Settled)
	assert.Equal(t, SettleReasonFrozen, result.Reason)
	assert.Equal(t, 0, f.gateway.transferCalls)
	assert.Equal(t, entity.RentalCompletedPendingPayout, f.rental("r1").Status)
}

func TestSettleProcessorFailureLeavesState(t *testing.T) {
	f := newFixture()
	seedPayoutPending(f, "r1", -time.Hour)
	f.gateway.failTransfer = true

	_, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	assert.True(t, errors.Is(err, errors.CodeProcessorFailure))

	got := f.rental("r1")
	assert.Equal(t, entity.RentalCompletedPendingPayout, got.Status)
	assert.Empty(t, got.TransferRef)

	// Retry after the processor recovers.
	f.gateway.failTransfer = false
	result, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, result.Settled)
}

func TestSettleWrongState(t *testing.T) {
	f := newFixture()
	rental := seedPayoutPending(f, "r1", -time.Hour)
	rental.Status = entity.RentalActive
	f.addRental(rental)

	_, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	assert.True(t, errors.Is(err, errors.CodeInvalidSourceState))
}

func TestSettleUnknownRental(t *testing.T) {
	f := newFixture()

	_, err := f.settlementUC.CheckAndSettle(context.Background(), "nope")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestSettleReleasesHeldDeposit(t *testing.T) {
	f := newFixture()
	rental := seedPayoutPending(f, "r1", -time.Hour)
	rental.DepositAmount = 50
	rental.DepositStatus = entity.DepositHeld
	f.addRental(rental)

	result, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)
	require.True(t, result.Settled)

	assert.Equal(t, entity.DepositReleased, f.rental("r1").DepositStatus)
}

func TestProcessEligiblePayouts(t *testing.T) {
	f := newFixture()
	seedPayoutPending(f, "due-1", -2*time.Hour)
	seedPayoutPending(f, "due-2", -time.Minute)
	seedPayoutPending(f, "not-yet", 6*time.Hour)

	frozen := seedPayoutPending(f, "frozen", -time.Hour)
	frozen.PayoutFrozen = true
	f.addRental(frozen)

	settled, err := f.settlementUC.ProcessEligiblePayouts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, settled)
	assert.Equal(t, entity.RentalCompleted, f.rental("due-1").Status)
	assert.Equal(t, entity.RentalCompleted, f.rental("due-2").Status)
	assert.Equal(t, entity.RentalCompletedPendingPayout, f.rental("not-yet").Status)
	assert.Equal(t, entity.RentalCompletedPendingPayout, f.rental("frozen").Status)
}
