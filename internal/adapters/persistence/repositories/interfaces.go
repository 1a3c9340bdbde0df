package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"helacredit/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}

// CountyRepository defines county master data access
type CountyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.County, error)
	GetByCode(ctx context.Context, code string) (*models.County, error)
	List(ctx context.Context) ([]*models.County, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// LoanFilter narrows application listings
type LoanFilter struct {
	UserID *uint
	Status string
	Search string
}

// StatusTally is one row of a group-by-status report
type StatusTally struct {
	Status string
	Count  int64
}

// LoanRepository defines loan application data access
type LoanRepository interface {
	Create(ctx context.Context, app *models.LoanApplication) error
	GetByID(ctx context.Context, id uint) (*models.LoanApplication, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*models.LoanApplication, error)
	Update(ctx context.Context, app *models.LoanApplication) error
	// UpdateStatus flips status from -> to and stamps the named lifecycle
	// column, all in one guarded UPDATE. It fails with
	// domain.ErrInvalidStateTransition when the row is no longer in the
	// expected state.
	UpdateStatus(ctx context.Context, id uint, from, to string, extra map[string]interface{}) error
	List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.LoanApplication, int64, error)
	CountByStatus(ctx context.Context, userID *uint) ([]StatusTally, error)
	SumAmounts(ctx context.Context, column, status string, userID *uint) (decimal.Decimal, error)
	LatestByUser(ctx context.Context, userID uint) (*time.Time, error)
}

// PaymentRepository defines payment ledger data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	ListByApplication(ctx context.Context, loanApplicationID uint) ([]*models.Payment, error)
	HasCompleted(ctx context.Context, loanApplicationID uint, feeType string) (bool, error)
	HasAnyCompleted(ctx context.Context, loanApplicationID uint) (bool, error)
	CountPendingByUser(ctx context.Context, userID uint) (int64, error)
	SumCompleted(ctx context.Context) (decimal.Decimal, error)
	FailStalePending(ctx context.Context, cutoff time.Time) (int64, error)
	Update(ctx context.Context, payment *models.Payment) error
}

// DisbursementRepository defines disbursement data access
type DisbursementRepository interface {
	Create(ctx context.Context, disbursement *models.LoanDisbursement) error
	GetByApplication(ctx context.Context, loanApplicationID uint) (*models.LoanDisbursement, error)
	ExistsForApplication(ctx context.Context, loanApplicationID uint) (bool, error)
	SumAmount(ctx context.Context) (decimal.Decimal, error)
}

// Repositories bundles the stores participating in a unit of work
type Repositories struct {
	Loans         LoanRepository
	Payments      PaymentRepository
	Disbursements DisbursementRepository
}

// UnitOfWork runs a function with repositories bound to one database
// transaction. The transaction commits when fn returns nil and rolls
// back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
