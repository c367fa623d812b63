package entity

import (
	"time"
)

type EventType string

const (
	EventRentalRequested     EventType = "rental_requested"
	EventRentalApproved      EventType = "rental_approved"
	EventRentalDeclined      EventType = "rental_declined"
	EventRentalPaid          EventType = "rental_paid"
	EventRentalCancelled     EventType = "rental_cancelled"
	EventCompletionInitiated EventType = "completion_initiated"
	EventReturnConfirmed     EventType = "return_confirmed"
	EventPayoutSettled       EventType = "payout_settled"
	EventDisputeFiled        EventType = "dispute_filed"
	EventDisputeResponse     EventType = "dispute_response"
	EventProposalSubmitted   EventType = "proposal_submitted"
	EventProposalAccepted    EventType = "proposal_accepted"
	EventProposalRejected    EventType = "proposal_rejected"
	EventDisputeEscalated    EventType = "dispute_escalated"
	EventDisputeUpdated      EventType = "dispute_updated"
	EventRefundIssued        EventType = "refund_issued"
)

// Event is emitted on every successful transition. Delivery is decoupled
// from the state change; a lost notification never rolls back a transition.
type Event struct {
	Type       EventType         `json:"type"`
	RentalID   string            `json:"rental_id,omitempty"`
	DisputeID  string            `json:"dispute_id,omitempty"`
	Recipients []string          `json:"recipients"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
