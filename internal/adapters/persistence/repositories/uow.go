package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GormUoW implements UnitOfWork over a gorm database handle
type GormUoW struct {
	db *gorm.DB
}

// NewGormUoW creates a new unit of work
func NewGormUoW(db *gorm.DB) *GormUoW {
	return &GormUoW{db: db}
}

// WithinTx binds fresh repositories to one transaction and runs fn.
// gorm commits on nil and rolls back on error or panic.
func (u *GormUoW) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Loans:         NewLoanRepository(tx),
			Payments:      NewPaymentRepository(tx),
			Disbursements: NewDisbursementRepository(tx),
		})
	})
}
