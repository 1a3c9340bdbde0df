package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"helacredit/internal/adapters/persistence/models"
	"helacredit/internal/core/domain"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan application repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan application
func (r *loanRepository) Create(ctx context.Context, app *models.LoanApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application by primary key with relations
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).
		Preload("County").
		Preload("Payments").
		Preload("Disbursement").
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByApplicationID gets an application by its public UUID
func (r *loanRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).
		Preload("County").
		Preload("Payments").
		Preload("Disbursement").
		Where("application_id = ?", applicationID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Update updates an application
func (r *loanRepository) Update(ctx context.Context, app *models.LoanApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// UpdateStatus flips status in a single guarded UPDATE. The WHERE clause
// carries the expected current status so two concurrent transitions
// cannot both win.
func (r *loanRepository) UpdateStatus(ctx context.Context, id uint, from, to string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for col, val := range extra {
		updates[col] = val
	}

	result := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

// List lists applications matching the filter with pagination
func (r *loanRepository) List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.LoanApplication, int64, error) {
	var apps []*models.LoanApplication
	var total int64

	query := r.db.WithContext(ctx).Model(&models.LoanApplication{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"application_id LIKE ? OR national_id LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("County").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error

	return apps, total, err
}

// CountByStatus tallies applications per status, optionally for one user
func (r *loanRepository) CountByStatus(ctx context.Context, userID *uint) ([]StatusTally, error) {
	var tallies []StatusTally
	query := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Select("status, count(*) as count").
		Group("status")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	err := query.Scan(&tallies).Error
	return tallies, err
}

// SumAmounts sums a money column over applications in the given status
func (r *loanRepository) SumAmounts(ctx context.Context, column, status string, userID *uint) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	query := r.db.WithContext(ctx).
		Model(&models.LoanApplication{}).
		Select("COALESCE(SUM(" + column + "), 0)")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if err := query.Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// LatestByUser returns when the user last created an application
func (r *loanRepository) LatestByUser(ctx context.Context, userID uint) (*time.Time, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&app).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &app.CreatedAt, nil
}
