package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	stripeapi "github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/internal/orders"
	"github.com/mateovidal/tradewind-backend/pkg/config"
	"github.com/mateovidal/tradewind-backend/pkg/db"
	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	"github.com/mateovidal/tradewind-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
	"github.com/mateovidal/tradewind-backend/pkg/logger"
	"github.com/mateovidal/tradewind-backend/pkg/metrics"
	pkgstripe "github.com/mateovidal/tradewind-backend/pkg/stripe"
	"github.com/mateovidal/tradewind-backend/pkg/types"
)

// CheckoutProvider is the narrow Stripe surface the service depends on.
// *pkgstripe.Client satisfies it.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, input pkgstripe.CheckoutSessionInput) (*stripeapi.CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*stripeapi.CheckoutSession, error)
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	DB        *db.Client
	TxRepo    *Repository
	OrderRepo *orders.Repository
	Checkout  CheckoutProvider
	StripeCfg config.StripeConfig
	Metrics   *metrics.PaymentMetrics
	Logger    *logger.Logger
}

// Service exposes checkout session management and payment reconciliation.
// The poll path and the webhook path both funnel into Reconcile so the
// paid transition is applied exactly once no matter which arrives first.
type Service interface {
	CreateSession(ctx context.Context, buyerID, orderID uuid.UUID) (CheckoutSessionDTO, error)
	CheckStatus(ctx context.Context, buyerID uuid.UUID, sessionID string) (PaymentStatusDTO, error)
	Reconcile(ctx context.Context, sessionID string) (ReconcileOutcome, error)
}

type service struct {
	db        *db.Client
	txRepo    *Repository
	orderRepo *orders.Repository
	checkout  CheckoutProvider
	stripeCfg config.StripeConfig
	metrics   *metrics.PaymentMetrics
	logger    *logger.Logger
}

// NewService builds a payment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.TxRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction repo is required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout provider is required")
	}
	return &service{
		db:        params.DB,
		txRepo:    params.TxRepo,
		orderRepo: params.OrderRepo,
		checkout:  params.Checkout,
		stripeCfg: params.StripeCfg,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}, nil
}

// CreateSession opens a hosted checkout for a pending order the buyer owns
// and records a pending transaction keyed by the session ID.
func (s *service) CreateSession(ctx context.Context, buyerID, orderID uuid.UUID) (CheckoutSessionDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CheckoutSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return CheckoutSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != buyerID {
		return CheckoutSessionDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return CheckoutSessionDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid")
	}

	session, err := s.checkout.CreateCheckoutSession(ctx, pkgstripe.CheckoutSessionInput{
		Name:        order.ListingTitle,
		AmountCents: order.TotalCents,
		Quantity:    1,
		Currency:    s.stripeCfg.Currency,
		SuccessURL:  s.stripeCfg.SuccessURL(),
		CancelURL:   s.stripeCfg.CancelURL(),
		Metadata: map[string]string{
			"order_id": order.ID.String(),
			"user_id":  buyerID.String(),
		},
	})
	if err != nil {
		return CheckoutSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open checkout session")
	}

	transaction := &models.PaymentTransaction{
		SessionID:     session.ID,
		OrderID:       order.ID,
		UserID:        buyerID,
		AmountCents:   order.TotalCents,
		Currency:      s.stripeCfg.Currency,
		PaymentStatus: enums.PaymentStatusPending,
		Metadata: types.JSONMap{
			"order_id":   order.ID.String(),
			"listing_id": order.ListingID.String(),
		},
	}
	if err := s.txRepo.Create(ctx, transaction); err != nil {
		return CheckoutSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transaction")
	}

	if err := s.orderRepo.SetSessionID(ctx, order.ID, session.ID); err != nil {
		return CheckoutSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp session on order")
	}

	s.metrics.IncSessionCreated()

	return CheckoutSessionDTO{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

// CheckStatus polls the provider for the session state and reconciles when
// the provider reports the payment settled.
func (s *service) CheckStatus(ctx context.Context, buyerID uuid.UUID, sessionID string) (PaymentStatusDTO, error) {
	transaction, err := s.txRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaymentStatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "session not found")
		}
		return PaymentStatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	if transaction.UserID != buyerID {
		return PaymentStatusDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "not your session")
	}

	if transaction.PaymentStatus == enums.PaymentStatusPending {
		session, err := s.checkout.RetrieveCheckoutSession(ctx, sessionID)
		if err != nil {
			return PaymentStatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve checkout session")
		}
		if session.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusPaid {
			if _, err := s.Reconcile(ctx, sessionID); err != nil {
				return PaymentStatusDTO{}, err
			}
			transaction, err = s.txRepo.FindBySessionID(ctx, sessionID)
			if err != nil {
				return PaymentStatusDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload transaction")
			}
		}
	}

	return PaymentStatusDTO{
		SessionID:     transaction.SessionID,
		OrderID:       transaction.OrderID,
		PaymentStatus: transaction.PaymentStatus,
	}, nil
}

// Reconcile applies the pending-to-paid transition for a settled checkout
// session. The claim is a conditional update on the transaction row, so
// concurrent webhook and poll deliveries race safely: one caller applies
// the order confirmation and stock decrement, the rest observe already_paid.
func (s *service) Reconcile(ctx context.Context, sessionID string) (ReconcileOutcome, error) {
	outcome := OutcomeUnknownSession

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		claimed, err := s.txRepo.ClaimPendingTx(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !claimed {
			if _, err := s.txRepo.FindBySessionIDTx(ctx, tx, sessionID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					outcome = OutcomeUnknownSession
					return nil
				}
				return err
			}
			outcome = OutcomeAlreadyPaid
			return nil
		}

		transaction, err := s.txRepo.FindBySessionIDTx(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		if err := tx.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ?", transaction.OrderID).
			Updates(map[string]any{
				"status":         enums.OrderStatusConfirmed,
				"payment_status": enums.PaymentStatusPaid,
			}).
			Error; err != nil {
			return err
		}

		var order models.Order
		if err := tx.WithContext(ctx).First(&order, "id = ?", transaction.OrderID).Error; err != nil {
			return err
		}

		// The decrement is unconditional: stock was only checked at order
		// time, so late payments can drive it negative.
		if err := tx.WithContext(ctx).
			Model(&models.Listing{}).
			Where("id = ?", order.ListingID).
			Update("stock", gorm.Expr("stock - ?", order.Quantity)).
			Error; err != nil {
			return err
		}

		outcome = OutcomePaidApplied
		return nil
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile payment")
	}

	s.metrics.IncReconcile(string(outcome))
	if s.logger != nil {
		logCtx := s.logger.WithFields(ctx, map[string]any{
			"session_id": sessionID,
			"outcome":    string(outcome),
		})
		s.logger.Info(logCtx, "payment.reconcile")
	}
	return outcome, nil
}
