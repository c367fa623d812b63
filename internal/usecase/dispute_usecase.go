package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"renterra/internal/domain/entity"
	"renterra/internal/domain/repository"
	"renterra/internal/domain/service"
	"renterra/internal/infrastructure/notification"
	"renterra/pkg/errors"
	"renterra/pkg/logger"
	"renterra/pkg/utils"
)

type DisputeUseCase struct {
	disputeRepo repository.DisputeRepository
	rentalRepo  repository.RentalRepository
	refundRepo  repository.RefundRepository
	userRepo    repository.UserRepository
	gateway     service.PaymentGateway
	dispatcher  *notification.Dispatcher

	now func() time.Time
}

func NewDisputeUseCase(
	disputeRepo repository.DisputeRepository,
	rentalRepo repository.RentalRepository,
	refundRepo repository.RefundRepository,
	userRepo repository.UserRepository,
	gateway service.PaymentGateway,
	dispatcher *notification.Dispatcher,
) *DisputeUseCase {
	return &DisputeUseCase{
		disputeRepo: disputeRepo,
		rentalRepo:  rentalRepo,
		refundRepo:  refundRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		dispatcher:  dispatcher,
		now:         time.Now,
	}
}

type FileDisputeInput struct {
	RentalID      string
	Type          entity.DisputeType
	Description   string
	EstimatedCost float64
	PhotoURLs     []string
}

// File opens a dispute against the other party of a rental. If the rental
// is sitting in its payout hold, the payout freeze lands in the same store
// transaction as the dispute record.
func (uc *DisputeUseCase) File(ctx context.Context, reporterID string, input FileDisputeInput) (*entity.Dispute, error) {
	rental, err := uc.rentalRepo.GetByID(ctx, input.RentalID)
	if err != nil {
		return nil, err
	}

	var reporterRole string
	var accusedID string
	switch reporterID {
	case rental.OwnerID:
		reporterRole = "owner"
		accusedID = rental.RenterID
	case rental.RenterID:
		reporterRole = "renter"
		accusedID = rental.OwnerID
	default:
		return nil, errors.InvalidActor("Only a party of the rental can file a dispute")
	}

	reporter, err := uc.userRepo.GetByID(ctx, reporterID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	dispute := &entity.Dispute{
		RentalID:      rental.ID,
		ItemID:        rental.ItemID,
		ReporterID:    reporterID,
		ReporterRole:  reporterRole,
		AccusedID:     accusedID,
		Type:          input.Type,
		Description:   input.Description,
		EstimatedCost: input.EstimatedCost,
		PhotoURLs:     input.PhotoURLs,
		Status:        entity.DisputeAwaitingResponse,
		Activities: []entity.DisputeActivity{
			{
				ID:        uuid.New().String(),
				Kind:      entity.ActivityCreated,
				ActorID:   reporterID,
				ActorName: reporter.Username,
				Content:   input.Description,
				PhotoURLs: input.PhotoURLs,
				CreatedAt: now,
			},
		},
	}

	frozen, err := uc.disputeRepo.CreateWithFreeze(ctx, dispute)
	if err != nil {
		logger.Transition("dispute", input.RentalID, "file", reporterID, err)
		return nil, err
	}

	logger.Transition("dispute", dispute.ID, "file", reporterID, nil)
	if frozen {
		logger.Info("Payout frozen by dispute: rental=%s dispute=%s", rental.ID, dispute.ID)
	}

	uc.emit(entity.EventDisputeFiled, dispute, []string{accusedID},
		"Dispute filed", "The other party filed a dispute against this rental. Please respond.")
	return dispute, nil
}

// CounterRespond lets the accused answer the dispute, moving it to
// investigating.
func (uc *DisputeUseCase) CounterRespond(ctx context.Context, callerID, disputeID, content string, photoURLs []string) (*entity.Dispute, error) {
	callerName := uc.actorName(ctx, callerID)
	dispute, err := uc.transition(ctx, disputeID, "counter_respond", callerID, func(d *entity.Dispute) error {
		if d.AccusedID != callerID {
			return errors.InvalidActor("Only the accused party can submit a counter-response")
		}
		if d.Status.IsTerminal() {
			return errors.InvalidSourceState(fmt.Sprintf("Dispute is %s", d.Status))
		}

		uc.appendActivity(d, entity.ActivityResponse, callerID, callerName, content, photoURLs)
		d.Status = entity.DisputeInvestigating
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(entity.EventDisputeResponse, dispute, []string{dispute.ReporterID},
		"Dispute response", "The other party responded to your dispute.")
	return dispute, nil
}

// AddMessage appends a free-text message from either party.
func (uc *DisputeUseCase) AddMessage(ctx context.Context, callerID, disputeID, content string, photoURLs []string) (*entity.Dispute, error) {
	callerName := uc.actorName(ctx, callerID)
	return uc.transition(ctx, disputeID, "message", callerID, func(d *entity.Dispute) error {
		if callerID != d.ReporterID && callerID != d.AccusedID {
			return errors.InvalidActor("Only a party of the dispute can post messages")
		}

		uc.appendActivity(d, entity.ActivityMessage, callerID, callerName, content, photoURLs)
		return nil
	})
}

type ProposeResolutionInput struct {
	Type        entity.ProposalType
	Amount      float64
	Description string
}

// ProposeResolution submits a settlement offer from either party.
func (uc *DisputeUseCase) ProposeResolution(ctx context.Context, callerID, disputeID string, input ProposeResolutionInput) (*entity.Dispute, error) {
	callerName := uc.actorName(ctx, callerID)
	dispute, err := uc.transition(ctx, disputeID, "propose_resolution", callerID, func(d *entity.Dispute) error {
		if callerID != d.ReporterID && callerID != d.AccusedID {
			return errors.InvalidActor("Only a party of the dispute can propose a resolution")
		}
		if d.Status.IsTerminal() {
			return errors.InvalidSourceState(fmt.Sprintf("Dispute is %s", d.Status))
		}

		proposal := entity.ResolutionProposal{
			ID:          uuid.New().String(),
			ProposerID:  callerID,
			Type:        input.Type,
			Amount:      input.Amount,
			Description: input.Description,
			Status:      entity.ProposalPending,
			CreatedAt:   uc.now(),
		}
		d.Proposals = append(d.Proposals, proposal)
		uc.appendActivity(d, entity.ActivityResolutionProposed, callerID, callerName, input.Description, nil)
		d.Status = entity.DisputeProposedResolution
		return nil
	})
	if err != nil {
		return nil, err
	}

	recipient := dispute.ReporterID
	if callerID == dispute.ReporterID {
		recipient = dispute.AccusedID
	}
	uc.emit(entity.EventProposalSubmitted, dispute, []string{recipient},
		"Resolution proposed", "The other party proposed a resolution for the dispute.")
	return dispute, nil
}

// RespondToProposal accepts or rejects a pending proposal. Only the party
// who did not create the proposal may respond. Acceptance resolves the
// dispute by mutual agreement and triggers the matching money movement;
// rejection sends the dispute back to investigating.
func (uc *DisputeUseCase) RespondToProposal(ctx context.Context, callerID, disputeID, proposalID string, accept bool, reason string) (*entity.Dispute, error) {
	var accepted *entity.ResolutionProposal

	action := "reject_proposal"
	if accept {
		action = "accept_proposal"
	}

	callerName := uc.actorName(ctx, callerID)
	dispute, err := uc.transition(ctx, disputeID, action, callerID, func(d *entity.Dispute) error {
		if callerID != d.ReporterID && callerID != d.AccusedID {
			return errors.InvalidActor("Only a party of the dispute can respond to a proposal")
		}
		if d.Status.IsTerminal() {
			return errors.InvalidSourceState(fmt.Sprintf("Dispute is %s, proposals are no longer actionable", d.Status))
		}

		proposal := findProposal(d, proposalID)
		if proposal == nil {
			return errors.NotFound("Proposal", nil)
		}
		if proposal.ProposerID == callerID {
			return errors.InvalidActor("A proposal can only be accepted or rejected by the other party")
		}
		if proposal.Status != entity.ProposalPending {
			return errors.InvalidSourceState(fmt.Sprintf("Proposal is already %s", proposal.Status))
		}

		now := uc.now()
		proposal.RespondedAt = &now

		if accept {
			proposal.Status = entity.ProposalAccepted
			d.Status = entity.DisputeResolved
			d.ResolvedBy = entity.ResolvedByMutualAgreement
			d.ResolvedAt = &now
			uc.appendActivity(d, entity.ActivityResolutionAccepted, callerID, callerName, "", nil)
			cp := *proposal
			accepted = &cp
		} else {
			proposal.Status = entity.ProposalRejected
			proposal.RejectReason = reason
			d.Status = entity.DisputeInvestigating
			uc.appendActivity(d, entity.ActivityResolutionRejected, callerID, callerName, reason, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if accepted != nil {
		uc.applyAcceptedProposal(ctx, dispute, accepted)
		uc.emit(entity.EventProposalAccepted, dispute, []string{dispute.ReporterID, dispute.AccusedID},
			"Dispute resolved", "Both parties agreed on a resolution.")
	} else {
		uc.emit(entity.EventProposalRejected, dispute, []string{otherParty(dispute, callerID)},
			"Proposal rejected", "The other party rejected the proposed resolution.")
	}
	return dispute, nil
}

// Escalate hands the dispute to an admin. Either party, any time before the
// dispute is resolved or closed.
func (uc *DisputeUseCase) Escalate(ctx context.Context, callerID, disputeID, reason string) (*entity.Dispute, error) {
	callerName := uc.actorName(ctx, callerID)
	dispute, err := uc.transition(ctx, disputeID, "escalate", callerID, func(d *entity.Dispute) error {
		if callerID != d.ReporterID && callerID != d.AccusedID {
			return errors.InvalidActor("Only a party of the dispute can escalate it")
		}
		if d.Status.IsTerminal() {
			return errors.InvalidSourceState(fmt.Sprintf("Dispute is %s", d.Status))
		}
		if d.Status == entity.DisputeEscalated {
			return errAlreadyApplied
		}

		d.Status = entity.DisputeEscalated
		d.EscalationReason = reason
		uc.appendActivity(d, entity.ActivityEscalated, callerID, callerName, reason, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(entity.EventDisputeEscalated, dispute, []string{otherParty(dispute, callerID)},
		"Dispute escalated", "The dispute was escalated for admin review.")
	return dispute, nil
}

type AdminUpdateInput struct {
	Status     entity.DisputeStatus
	ResolvedBy string
	Notes      string
}

// AdminUpdate is the admin bypass: a direct status move with notes,
// unrestricted by the party-only rules.
func (uc *DisputeUseCase) AdminUpdate(ctx context.Context, adminID, disputeID string, input AdminUpdateInput) (*entity.Dispute, error) {
	switch input.Status {
	case entity.DisputeInvestigating, entity.DisputeResolved, entity.DisputeClosed:
	default:
		return nil, errors.BadRequest("Admin may set status to investigating, resolved or closed", nil)
	}

	if input.Status == entity.DisputeResolved || input.Status == entity.DisputeClosed {
		switch input.ResolvedBy {
		case entity.ResolvedByAdmin, entity.ResolvedByRefundIssued, entity.ResolvedByNoAction:
		default:
			return nil, errors.BadRequest("resolved_by must be admin, refund_issued or no_action", nil)
		}
	}

	adminName := uc.actorName(ctx, adminID)
	dispute, err := uc.transition(ctx, disputeID, "admin_update", adminID, func(d *entity.Dispute) error {
		now := uc.now()
		d.Status = input.Status
		if input.Notes != "" {
			d.AdminNotes = input.Notes
			uc.appendActivity(d, entity.ActivityAdminNote, adminID, adminName, input.Notes, nil)
		}
		if input.Status == entity.DisputeResolved || input.Status == entity.DisputeClosed {
			d.ResolvedBy = input.ResolvedBy
			d.ResolvedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emit(entity.EventDisputeUpdated, dispute, []string{dispute.ReporterID, dispute.AccusedID},
		"Dispute updated", fmt.Sprintf("An admin moved the dispute to %s.", dispute.Status))
	return dispute, nil
}

// ReleasePayoutHold clears the freeze on a rental. Resolving a dispute does
// not clear it automatically: a resolved dispute may still carry a pending
// refund that supersedes the payout, so release is an explicit admin action.
func (uc *DisputeUseCase) ReleasePayoutHold(ctx context.Context, adminID, rentalID string) (*entity.Rental, error) {
	rental, err := uc.rentalRepo.UpdateTx(ctx, rentalID, func(r *entity.Rental) error {
		if r.Status != entity.RentalCompletedPendingPayout {
			return errors.InvalidSourceState(fmt.Sprintf("Rental in status %s carries no payout hold", r.Status))
		}
		if !r.PayoutFrozen {
			return errAlreadyApplied
		}
		r.PayoutFrozen = false
		return nil
	})
	if err != nil {
		if isAlreadyApplied(err) {
			return uc.rentalRepo.GetByID(ctx, rentalID)
		}
		logger.Transition("rental", rentalID, "release_payout_hold", adminID, err)
		return nil, err
	}

	logger.Transition("rental", rentalID, "release_payout_hold", adminID, nil)
	return rental, nil
}

// GetByID returns a dispute to its parties or an admin.
func (uc *DisputeUseCase) GetByID(ctx context.Context, callerID, disputeID string) (*entity.Dispute, error) {
	dispute, err := uc.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if dispute.ReporterID != callerID && dispute.AccusedID != callerID {
		caller, err := uc.userRepo.GetByID(ctx, callerID)
		if err != nil || caller.Role != "admin" {
			return nil, errors.Forbidden("You don't have permission to view this dispute", nil)
		}
	}

	return dispute, nil
}

// List returns the caller's disputes.
func (uc *DisputeUseCase) List(ctx context.Context, callerID string, status entity.DisputeStatus, page, limit int) ([]*entity.Dispute, int64, error) {
	pagination := utils.NewPaginationParams(page, limit)
	return uc.disputeRepo.ListByUserID(ctx, callerID, status, pagination.PageSize, pagination.Offset)
}

// ListByRental returns all disputes filed against one rental.
func (uc *DisputeUseCase) ListByRental(ctx context.Context, callerID, rentalID string) ([]*entity.Dispute, error) {
	rental, err := uc.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.OwnerID != callerID && rental.RenterID != callerID {
		caller, err := uc.userRepo.GetByID(ctx, callerID)
		if err != nil || caller.Role != "admin" {
			return nil, errors.Forbidden("You don't have permission to view these disputes", nil)
		}
	}
	return uc.disputeRepo.ListByRentalID(ctx, rentalID)
}

// applyAcceptedProposal carries out the money side of a mutual agreement.
func (uc *DisputeUseCase) applyAcceptedProposal(ctx context.Context, dispute *entity.Dispute, proposal *entity.ResolutionProposal) {
	switch proposal.Type {
	case entity.ProposalFullRefund, entity.ProposalPartialRefund, entity.ProposalRepairCost:
	default:
		// replacement, no_action, other: recorded, no money moves here.
		return
	}

	rental, err := uc.rentalRepo.GetByID(ctx, dispute.RentalID)
	if err != nil {
		logger.Error("Could not load rental %s for dispute refund: %v", dispute.RentalID, err)
		return
	}

	amount := proposal.Amount
	if proposal.Type == entity.ProposalFullRefund || amount <= 0 {
		amount = rental.TotalPrice
	}

	refund := &entity.Refund{
		RentalID:   rental.ID,
		RenterID:   rental.RenterID,
		PaymentRef: rental.PaymentRef,
		Amount:     amount,
		Reason:     fmt.Sprintf("dispute %s: %s", dispute.ID, proposal.Type),
		Status:     entity.RefundPending,
	}
	if err := uc.refundRepo.Create(ctx, refund); err != nil {
		logger.Error("Failed to record dispute refund: dispute=%s error=%v", dispute.ID, err)
		return
	}

	refundRef, err := uc.gateway.Refund(ctx, rental.PaymentRef, amount)
	if err != nil {
		logger.Warn("Dispute refund %s left pending, gateway error: %v", refund.ID, err)
		return
	}

	refund.Status = entity.RefundCompleted
	refund.RefundRef = refundRef
	if err := uc.refundRepo.Update(ctx, refund); err != nil {
		logger.Error("Failed to mark dispute refund %s completed: %v", refund.ID, err)
		return
	}

	if _, err := uc.transition(ctx, dispute.ID, "refund_issued", "system", func(d *entity.Dispute) error {
		uc.appendActivity(d, entity.ActivityRefundIssued, "system", "",
			fmt.Sprintf("Refund of %.2f issued (%s)", amount, refundRef), nil)
		return nil
	}); err != nil {
		logger.Warn("Failed to append refund activity to dispute %s: %v", dispute.ID, err)
	}

	uc.emit(entity.EventRefundIssued, dispute, []string{rental.RenterID},
		"Refund issued", fmt.Sprintf("A refund of %.2f %s was issued from the dispute resolution.", amount, rental.Currency))
}

func (uc *DisputeUseCase) transition(ctx context.Context, disputeID, action, actorID string, fn func(*entity.Dispute) error) (*entity.Dispute, error) {
	dispute, err := uc.disputeRepo.UpdateTx(ctx, disputeID, fn)
	if isAlreadyApplied(err) {
		current, getErr := uc.disputeRepo.GetByID(ctx, disputeID)
		if getErr != nil {
			return nil, getErr
		}
		return current, nil
	}

	logger.Transition("dispute", disputeID, action, actorID, err)
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

func (uc *DisputeUseCase) appendActivity(d *entity.Dispute, kind entity.ActivityKind, actorID, actorName, content string, photoURLs []string) {
	d.Activities = append(d.Activities, entity.DisputeActivity{
		ID:        uuid.New().String(),
		Kind:      kind,
		ActorID:   actorID,
		ActorName: actorName,
		Content:   content,
		PhotoURLs: photoURLs,
		CreatedAt: uc.now(),
	})
}

// actorName resolves the display name before a transition starts; system
// actors have no user record and stay nameless.
func (uc *DisputeUseCase) actorName(ctx context.Context, actorID string) string {
	user, err := uc.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return ""
	}
	return user.Username
}

func (uc *DisputeUseCase) emit(eventType entity.EventType, dispute *entity.Dispute, recipients []string, title, body string) {
	if uc.dispatcher == nil {
		return
	}
	uc.dispatcher.Emit(entity.Event{
		Type:       eventType,
		DisputeID:  dispute.ID,
		RentalID:   dispute.RentalID,
		Recipients: recipients,
		Title:      title,
		Body:       body,
		OccurredAt: uc.now(),
	})
}

func findProposal(d *entity.Dispute, proposalID string) *entity.ResolutionProposal {
	for i := range d.Proposals {
		if d.Proposals[i].ID == proposalID {
			return &d.Proposals[i]
		}
	}
	return nil
}

func otherParty(d *entity.Dispute, callerID string) string {
	if callerID == d.ReporterID {
		return d.AccusedID
	}
	return d.ReporterID
}

func isAlreadyApplied(err error) bool {
	return stderrors.Is(err, errAlreadyApplied)
}
