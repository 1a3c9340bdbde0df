package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"helacredit/internal/adapters/persistence/models"
)

// disbursementRepository implements DisbursementRepository interface
type disbursementRepository struct {
	db *gorm.DB
}

// NewDisbursementRepository creates a new disbursement repository
func NewDisbursementRepository(db *gorm.DB) DisbursementRepository {
	return &disbursementRepository{db: db}
}

// Create creates a new disbursement record
func (r *disbursementRepository) Create(ctx context.Context, disbursement *models.LoanDisbursement) error {
	return r.db.WithContext(ctx).Create(disbursement).Error
}

// GetByApplication gets the disbursement for an application
func (r *disbursementRepository) GetByApplication(ctx context.Context, loanApplicationID uint) (*models.LoanDisbursement, error) {
	var disbursement models.LoanDisbursement
	err := r.db.WithContext(ctx).
		Where("loan_application_id = ?", loanApplicationID).
		First(&disbursement).Error
	if err != nil {
		return nil, err
	}
	return &disbursement, nil
}

// ExistsForApplication checks if an application was already paid out
func (r *disbursementRepository) ExistsForApplication(ctx context.Context, loanApplicationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoanDisbursement{}).
		Where("loan_application_id = ?", loanApplicationID).
		Count(&count).Error
	return count > 0, err
}

// SumAmount totals all payouts
func (r *disbursementRepository) SumAmount(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.LoanDisbursement{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
