package payments

import (
	"github.com/google/uuid"

	"github.com/mateovidal/tradewind-backend/pkg/enums"
)

// CheckoutSessionDTO is returned when a hosted checkout is opened.
type CheckoutSessionDTO struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// PaymentStatusDTO reports the settled state of a checkout session.
type PaymentStatusDTO struct {
	SessionID     string              `json:"session_id"`
	OrderID       uuid.UUID           `json:"order_id"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
}

// ReconcileOutcome labels what a reconciliation attempt did.
type ReconcileOutcome string

const (
	// OutcomePaidApplied means this caller won the claim and applied the
	// paid transition.
	OutcomePaidApplied ReconcileOutcome = "paid_applied"
	// OutcomeAlreadyPaid means another caller settled the session first.
	OutcomeAlreadyPaid ReconcileOutcome = "already_paid"
	// OutcomeUnknownSession means no transaction tracks the session.
	OutcomeUnknownSession ReconcileOutcome = "unknown_session"
)
