package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"helacredit/internal/adapters/persistence/models"
	"helacredit/internal/core/domain"
)

// paymentRepository implements PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment record
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByReference gets a payment by its ledger reference
func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByApplication lists payments for an application, newest first
func (r *paymentRepository) ListByApplication(ctx context.Context, loanApplicationID uint) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("loan_application_id = ?", loanApplicationID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// HasCompleted checks for a completed payment of the given fee type
func (r *paymentRepository) HasCompleted(ctx context.Context, loanApplicationID uint, feeType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("loan_application_id = ?", loanApplicationID).
		Where("fee_type = ?", feeType).
		Where("status = ?", string(domain.PaymentCompleted)).
		Count(&count).Error
	return count > 0, err
}

// HasAnyCompleted checks for any completed payment on the application
func (r *paymentRepository) HasAnyCompleted(ctx context.Context, loanApplicationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("loan_application_id = ?", loanApplicationID).
		Where("status = ?", string(domain.PaymentCompleted)).
		Count(&count).Error
	return count > 0, err
}

// CountPendingByUser counts pending payments across a user's applications
func (r *paymentRepository) CountPendingByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Joins("JOIN loan_applications ON loan_applications.id = payments.loan_application_id").
		Where("loan_applications.user_id = ?", userID).
		Where("payments.status = ?", string(domain.PaymentPending)).
		Count(&count).Error
	return count, err
}

// SumCompleted totals all settled fees in the ledger
func (r *paymentRepository) SumCompleted(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", string(domain.PaymentCompleted)).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// FailStalePending marks pending payments created before the cutoff as failed
func (r *paymentRepository) FailStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ?", string(domain.PaymentPending)).
		Where("created_at < ?", cutoff).
		Update("status", string(domain.PaymentFailed))
	return result.RowsAffected, result.Error
}

// Update updates a payment record
func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}
