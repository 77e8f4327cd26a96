package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/mateovidal/tradewind-backend/internal/payments"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
	"github.com/mateovidal/tradewind-backend/pkg/logger"
)

type paymentReconciler interface {
	Reconcile(ctx context.Context, sessionID string) (payments.ReconcileOutcome, error)
}

type ServiceParams struct {
	Payments paymentReconciler
	Logger   *logger.Logger
}

// Service routes verified Stripe events into payment reconciliation.
type Service struct {
	payments paymentReconciler
	logger   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment service required")
	}
	return &Service{
		payments: params.Payments,
		logger:   params.Logger,
	}, nil
}

// HandleEvent processes a single Stripe event. Settlement events feed the
// reconciler; everything else is acknowledged and dropped.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		if session.ID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
		}
		// completed events fire for delayed payment methods too; only a
		// paid session settles the order.
		if event.Type == stripe.EventTypeCheckoutSessionCompleted &&
			session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			return nil
		}
		outcome, err := s.payments.Reconcile(ctx, session.ID)
		if err != nil {
			return err
		}
		if s.logger != nil {
			logCtx := s.logger.WithFields(ctx, map[string]any{
				"event_id":   event.ID,
				"event_type": string(event.Type),
				"session_id": session.ID,
				"outcome":    string(outcome),
			})
			s.logger.Info(logCtx, "stripe.webhook.handled")
		}
		return nil
	default:
		return nil
	}
}
