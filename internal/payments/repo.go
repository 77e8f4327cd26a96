package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/mateovidal/tradewind-backend/pkg/db/models"
	"github.com/mateovidal/tradewind-backend/pkg/enums"
)

// Repository encapsulates payment transaction persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a payment repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new payment transaction row.
func (r *Repository) Create(ctx context.Context, transaction *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

// FindBySessionID loads the transaction tracking a checkout session.
func (r *Repository) FindBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	var transaction models.PaymentTransaction
	if err := r.db.WithContext(ctx).First(&transaction, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// ClaimPendingTx flips the transaction from pending to paid inside the
// supplied transaction. Exactly one concurrent caller wins the claim; the
// return value reports whether this caller did.
func (r *Repository) ClaimPendingTx(ctx context.Context, tx *gorm.DB, sessionID string) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("session_id = ? AND payment_status = ?", sessionID, enums.PaymentStatusPending).
		Update("payment_status", enums.PaymentStatusPaid)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindBySessionIDTx loads the transaction inside the supplied transaction.
func (r *Repository) FindBySessionIDTx(ctx context.Context, tx *gorm.DB, sessionID string) (*models.PaymentTransaction, error) {
	var transaction models.PaymentTransaction
	if err := tx.WithContext(ctx).First(&transaction, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}
