package entity

import (
	"time"
)

type DisputeStatus string

const (
	DisputeOpen               DisputeStatus = "open"
	DisputeAwaitingResponse   DisputeStatus = "awaiting_response"
	DisputeInvestigating      DisputeStatus = "investigating"
	DisputeProposedResolution DisputeStatus = "proposed_resolution"
	DisputeResolved           DisputeStatus = "resolved"
	DisputeClosed             DisputeStatus = "closed"
	DisputeEscalated          DisputeStatus = "escalated"
)

func (s DisputeStatus) IsTerminal() bool {
	return s == DisputeResolved || s == DisputeClosed
}

type DisputeType string

const (
	DisputeDamage         DisputeType = "damage"
	DisputeNotAsDescribed DisputeType = "not_as_described"
	DisputeLateReturn     DisputeType = "late_return"
	DisputePaymentIssue   DisputeType = "payment_issue"
	DisputeOther          DisputeType = "other"
)

// Who closed the book on the dispute.
const (
	ResolvedByMutualAgreement = "mutual_agreement"
	ResolvedByAdmin           = "admin"
	ResolvedByRefundIssued    = "refund_issued"
	ResolvedByNoAction        = "no_action"
)

type Dispute struct {
	ID       string `json:"id" firestore:"id"`
	RentalID string `json:"rental_id" firestore:"rentalId"`
	ItemID   string `json:"item_id" firestore:"itemId"`

	ReporterID   string `json:"reporter_id" firestore:"reporterId"`
	ReporterRole string `json:"reporter_role" firestore:"reporterRole"` // owner, renter
	AccusedID    string `json:"accused_id" firestore:"accusedId"`

	Type          DisputeType `json:"type" firestore:"type"`
	Description   string      `json:"description" firestore:"description"`
	EstimatedCost float64     `json:"estimated_cost,omitempty" firestore:"estimatedCost,omitempty"`
	PhotoURLs     []string    `json:"photo_urls,omitempty" firestore:"photoUrls,omitempty"`

	Status     DisputeStatus `json:"status" firestore:"status"`
	ResolvedBy string        `json:"resolved_by,omitempty" firestore:"resolvedBy,omitempty"`

	// Append-only. Activities record everything that happened; proposals
	// carry their own status so rejected offers stay auditable.
	Activities []DisputeActivity    `json:"activities" firestore:"activities"`
	Proposals  []ResolutionProposal `json:"proposals" firestore:"proposals"`

	EscalationReason string `json:"escalation_reason,omitempty" firestore:"escalationReason,omitempty"`
	AdminNotes       string `json:"admin_notes,omitempty" firestore:"adminNotes,omitempty"`

	CreatedAt  time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time  `json:"updated_at" firestore:"updatedAt"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" firestore:"resolvedAt,omitempty"`
}

type ActivityKind string

const (
	ActivityCreated            ActivityKind = "created"
	ActivityResponse           ActivityKind = "response"
	ActivityMessage            ActivityKind = "message"
	ActivityResolutionProposed ActivityKind = "resolution_proposed"
	ActivityResolutionAccepted ActivityKind = "resolution_accepted"
	ActivityResolutionRejected ActivityKind = "resolution_rejected"
	ActivityEscalated          ActivityKind = "escalated"
	ActivityAdminNote          ActivityKind = "admin_note"
	ActivityRefundIssued       ActivityKind = "refund_issued"
)

type DisputeActivity struct {
	ID        string       `json:"id" firestore:"id"`
	Kind      ActivityKind `json:"kind" firestore:"kind"`
	ActorID   string       `json:"actor_id" firestore:"actorId"`
	ActorName string       `json:"actor_name,omitempty" firestore:"actorName,omitempty"`
	Content   string       `json:"content,omitempty" firestore:"content,omitempty"`
	PhotoURLs []string     `json:"photo_urls,omitempty" firestore:"photoUrls,omitempty"`
	CreatedAt time.Time    `json:"created_at" firestore:"createdAt"`
}

type ProposalType string

const (
	ProposalFullRefund    ProposalType = "full_refund"
	ProposalPartialRefund ProposalType = "partial_refund"
	ProposalReplacement   ProposalType = "replacement"
	ProposalRepairCost    ProposalType = "repair_cost"
	ProposalNoAction      ProposalType = "no_action"
	ProposalOther         ProposalType = "other"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
	ProposalExpired  ProposalStatus = "expired"
)

type ResolutionProposal struct {
	ID          string         `json:"id" firestore:"id"`
	ProposerID  string         `json:"proposer_id" firestore:"proposerId"`
	Type        ProposalType   `json:"type" firestore:"type"`
	Amount      float64        `json:"amount,omitempty" firestore:"amount,omitempty"`
	Description string         `json:"description" firestore:"description"`
	Status      ProposalStatus `json:"status" firestore:"status"`
	RejectReason string        `json:"reject_reason,omitempty" firestore:"rejectReason,omitempty"`
	CreatedAt   time.Time      `json:"created_at" firestore:"createdAt"`
	RespondedAt *time.Time     `json:"responded_at,omitempty" firestore:"respondedAt,omitempty"`
}
