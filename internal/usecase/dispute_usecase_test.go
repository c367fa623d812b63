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

func seedDisputeParties(f *fixture) {
	f.addUser("owner-1", "user")
	f.addUser("renter-1", "user")
	f.addUser("admin-1", "admin")
}

func fileDamageDispute(t *testing.T, f *fixture, reporterID string) *entity.Dispute {
	t.Helper()
	dispute, err := f.disputeUC.File(context.Background(), reporterID, FileDisputeInput{
		RentalID:    "r1",
		Type:        entity.DisputeDamage,
		Description: "Scratch on the lens",
	})
	require.NoError(t, err)
	return dispute
}

func TestFileDisputeFreezesPayout(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)

	dispute := fileDamageDispute(t, f, "owner-1")

	assert.Equal(t, entity.DisputeAwaitingResponse, dispute.Status)
	assert.Equal(t, "owner", dispute.ReporterRole)
	assert.Equal(t, "renter-1", dispute.AccusedID)
	require.Len(t, dispute.Activities, 1)
	assert.Equal(t, entity.ActivityCreated, dispute.Activities[0].Kind)

	// The freeze landed with the dispute.
	assert.True(t, f.rental("r1").PayoutFrozen)
}

func TestFileDisputeOnActiveRentalDoesNotFreeze(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	rental := seedPayoutPending(f, "r1", 10*time.Hour)
	rental.Status = entity.RentalActive
	f.addRental(rental)

	fileDamageDispute(t, f, "renter-1")

	assert.False(t, f.rental("r1").PayoutFrozen)
}

func TestFileDisputeByOutsiderRejected(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	f.addUser("stranger", "user")
	seedPayoutPending(f, "r1", 10*time.Hour)

	_, err := f.disputeUC.File(context.Background(), "stranger", FileDisputeInput{
		RentalID: "r1",
		Type:     entity.DisputeDamage,
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidActor))
	assert.False(t, f.rental("r1").PayoutFrozen)
}

func TestDisputeFreezeBlocksSettlement(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)

	fileDamageDispute(t, f, "owner-1")
	f.advance(48 * time.Hour) // past eligibility

	result, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)
	assert.False(t, result.Settled)
	assert.Equal(t, SettleReasonFrozen, result.Reason)
	assert.Equal(t, 0, f.gateway.transferCalls)
}

func TestCounterRespondAccusedOnly(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "owner-1")

	_, err := f.disputeUC.CounterRespond(context.Background(), "owner-1", dispute.ID, "It was fine", nil)
	assert.True(t, errors.Is(err, errors.CodeInvalidActor))

	updated, err := f.disputeUC.CounterRespond(context.Background(), "renter-1", dispute.ID, "It was fine when I returned it", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.DisputeInvestigating, updated.Status)
	require.Len(t, updated.Activities, 2)
	assert.Equal(t, entity.ActivityResponse, updated.Activities[1].Kind)
	assert.Equal(t, "renter-1", updated.Activities[1].ActorID)
	assert.Equal(t, "renter-1", updated.Activities[1].ActorName)
}

func TestActivitiesCarryActorNames(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "owner-1")

	assert.Equal(t, "owner-1", dispute.Activities[0].ActorName)

	withProposal, err := f.disputeUC.ProposeResolution(context.Background(), "owner-1", dispute.ID, ProposeResolutionInput{
		Type:        entity.ProposalNoAction,
		Description: "Nothing owed either way",
	})
	require.NoError(t, err)

	rejected, err := f.disputeUC.RespondToProposal(context.Background(), "renter-1", dispute.ID, withProposal.Proposals[0].ID, false, "Disagree")
	require.NoError(t, err)

	proposed := rejected.Activities[len(rejected.Activities)-2]
	assert.Equal(t, entity.ActivityResolutionProposed, proposed.Kind)
	assert.Equal(t, "owner-1", proposed.ActorName)

	rejection := rejected.Activities[len(rejected.Activities)-1]
	assert.Equal(t, entity.ActivityResolutionRejected, rejection.Kind)
	assert.Equal(t, "renter-1", rejection.ActorName)
}

func TestProposalAcceptResolvesAndRefunds(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "renter-1")

	withProposal, err := f.disputeUC.ProposeResolution(context.Background(), "renter-1", dispute.ID, ProposeResolutionInput{
		Type:        entity.ProposalPartialRefund,
		Amount:      40,
		Description: "Half a day back for the late pickup",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DisputeProposedResolution, withProposal.Status)
	require.Len(t, withProposal.Proposals, 1)
	proposalID := withProposal.Proposals[0].ID

	// The proposer cannot accept their own offer.
	_, err = f.disputeUC.RespondToProposal(context.Background(), "renter-1", dispute.ID, proposalID, true, "")
	assert.True(t, errors.Is(err, errors.CodeInvalidActor))

	resolved, err := f.disputeUC.RespondToProposal(context.Background(), "owner-1", dispute.ID, proposalID, true, "")
	require.NoError(t, err)

	assert.Equal(t, entity.DisputeResolved, resolved.Status)
	assert.Equal(t, entity.ResolvedByMutualAgreement, resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, entity.ProposalAccepted, resolved.Proposals[0].Status)

	refunds := f.refundsFor("r1")
	require.Len(t, refunds, 1)
	assert.Equal(t, 40.0, refunds[0].Amount)
	assert.Equal(t, entity.RefundCompleted, refunds[0].Status)
	assert.Equal(t, 1, f.gateway.refundCalls)
}

func TestProposalRejectReturnsToInvestigating(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "renter-1")

	withProposal, err := f.disputeUC.ProposeResolution(context.Background(), "renter-1", dispute.ID, ProposeResolutionInput{
		Type:   entity.ProposalFullRefund,
		Amount: 120,
	})
	require.NoError(t, err)
	proposalID := withProposal.Proposals[0].ID

	rejected, err := f.disputeUC.RespondToProposal(context.Background(), "owner-1", dispute.ID, proposalID, false, "Too much")
	require.NoError(t, err)

	assert.Equal(t, entity.DisputeInvestigating, rejected.Status)
	assert.Equal(t, entity.ProposalRejected, rejected.Proposals[0].Status)
	assert.Equal(t, "Too much", rejected.Proposals[0].RejectReason)
	assert.Empty(t, f.refundsFor("r1"))

	// The same proposal cannot be answered twice.
	_, err = f.disputeUC.RespondToProposal(context.Background(), "owner-1", dispute.ID, proposalID, true, "")
	assert.True(t, errors.Is(err, errors.CodeInvalidSourceState))
}

func TestNoActionProposalMovesNoMoney(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "owner-1")

	withProposal, err := f.disputeUC.ProposeResolution(context.Background(), "owner-1", dispute.ID, ProposeResolutionInput{
		Type: entity.ProposalNoAction,
	})
	require.NoError(t, err)

	resolved, err := f.disputeUC.RespondToProposal(context.Background(), "renter-1", dispute.ID, withProposal.Proposals[0].ID, true, "")
	require.NoError(t, err)

	assert.Equal(t, entity.DisputeResolved, resolved.Status)
	assert.Empty(t, f.refundsFor("r1"))
	assert.Equal(t, 0, f.gateway.refundCalls)
}

func TestResolutionLeavesFreezeInPlace(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "owner-1")

	withProposal, err := f.disputeUC.ProposeResolution(context.Background(), "owner-1", dispute.ID, ProposeResolutionInput{
		Type: entity.ProposalNoAction,
	})
	require.NoError(t, err)
	_, err = f.disputeUC.RespondToProposal(context.Background(), "renter-1", dispute.ID, withProposal.Proposals[0].ID, true, "")
	require.NoError(t, err)

	// Resolving the dispute does not release the hold on its own.
	assert.True(t, f.rental("r1").PayoutFrozen)

	rental, err := f.disputeUC.ReleasePayoutHold(context.Background(), "admin-1", "r1")
	require.NoError(t, err)
	assert.False(t, rental.PayoutFrozen)

	f.advance(48 * time.Hour)
	result, err := f.settlementUC.CheckAndSettle(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, result.Settled)
}

func TestReleasePayoutHoldIdempotent(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	rental := seedPayoutPending(f, "r1", 10*time.Hour)
	rental.PayoutFrozen = true
	f.addRental(rental)

	first, err := f.disputeUC.ReleasePayoutHold(context.Background(), "admin-1", "r1")
	require.NoError(t, err)
	assert.False(t, first.PayoutFrozen)

	second, err := f.disputeUC.ReleasePayoutHold(context.Background(), "admin-1", "r1")
	require.NoError(t, err)
	assert.False(t, second.PayoutFrozen)
}

func TestEscalateDispute(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "owner-1")

	escalated, err := f.disputeUC.Escalate(context.Background(), "renter-1", dispute.ID, "We cannot agree")
	require.NoError(t, err)

	assert.Equal(t, entity.DisputeEscalated, escalated.Status)
	assert.Equal(t, "We cannot agree", escalated.EscalationReason)

	// Repeat call is the idempotent no-op.
	again, err := f.disputeUC.Escalate(context.Background(), "renter-1", dispute.ID, "still stuck")
	require.NoError(t, err)
	assert.Equal(t, "We cannot agree", again.EscalationReason)
}

func TestAdminUpdateValidation(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "owner-1")

	_, err := f.disputeUC.AdminUpdate(context.Background(), "admin-1", dispute.ID, AdminUpdateInput{
		Status: entity.DisputeAwaitingResponse,
	})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.disputeUC.AdminUpdate(context.Background(), "admin-1", dispute.ID, AdminUpdateInput{
		Status:     entity.DisputeResolved,
		ResolvedBy: "someone",
	})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	resolved, err := f.disputeUC.AdminUpdate(context.Background(), "admin-1", dispute.ID, AdminUpdateInput{
		Status:     entity.DisputeResolved,
		ResolvedBy: entity.ResolvedByNoAction,
		Notes:      "No evidence of damage",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DisputeResolved, resolved.Status)
	assert.Equal(t, entity.ResolvedByNoAction, resolved.ResolvedBy)
	assert.Equal(t, "No evidence of damage", resolved.AdminNotes)
	require.NotNil(t, resolved.ResolvedAt)
}

func TestTerminalDisputeRejectsPartyActions(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "owner-1")

	_, err := f.disputeUC.AdminUpdate(context.Background(), "admin-1", dispute.ID, AdminUpdateInput{
		Status:     entity.DisputeClosed,
		ResolvedBy: entity.ResolvedByAdmin,
	})
	require.NoError(t, err)

	_, err = f.disputeUC.CounterRespond(context.Background(), "renter-1", dispute.ID, "late answer", nil)
	assert.True(t, errors.Is(err, errors.CodeInvalidSourceState))

	_, err = f.disputeUC.ProposeResolution(context.Background(), "owner-1", dispute.ID, ProposeResolutionInput{
		Type: entity.ProposalNoAction,
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidSourceState))

	_, err = f.disputeUC.Escalate(context.Background(), "owner-1", dispute.ID, "")
	assert.True(t, errors.Is(err, errors.CodeInvalidSourceState))
}

func TestGetDisputePermissions(t *testing.T) {
	f := newFixture()
	seedDisputeParties(f)
	f.addUser("stranger", "user")
	seedPayoutPending(f, "r1", 10*time.Hour)
	dispute := fileDamageDispute(t, f, "owner-1")

	_, err := f.disputeUC.GetByID(context.Background(), "renter-1", dispute.ID)
	assert.NoError(t, err)

	_, err = f.disputeUC.GetByID(context.Background(), "admin-1", dispute.ID)
	assert.NoError(t, err)

	_, err = f.disputeUC.GetByID(context.Background(), "stranger", dispute.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}
