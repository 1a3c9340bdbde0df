package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"helacredit/internal/adapters/persistence/models"
	"helacredit/internal/adapters/persistence/repositories"
	"helacredit/internal/core/domain"
	"helacredit/internal/pkg/reference"
)

var (
	phonePattern      = regexp.MustCompile(`^0[0-9]{9}$`)
	nationalIDPattern = regexp.MustCompile(`^[0-9]{8}$`)
)

// LoanService handles the loan application workflow
type LoanService struct {
	loanRepo         repositories.LoanRepository
	paymentRepo      repositories.PaymentRepository
	disbursementRepo repositories.DisbursementRepository
	countyRepo       repositories.CountyRepository
	uow              repositories.UnitOfWork
	gateway          PaymentGateway
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	paymentRepo repositories.PaymentRepository,
	disbursementRepo repositories.DisbursementRepository,
	countyRepo repositories.CountyRepository,
	uow repositories.UnitOfWork,
	gateway PaymentGateway,
) *LoanService {
	return &LoanService{
		loanRepo:         loanRepo,
		paymentRepo:      paymentRepo,
		disbursementRepo: disbursementRepo,
		countyRepo:       countyRepo,
		uow:              uow,
		gateway:          gateway,
	}
}

// ApplicationInput carries the applicant and loan term fields shared by
// create and draft update
type ApplicationInput struct {
	FirstName        string          `json:"first_name" validate:"required"`
	LastName         string          `json:"last_name" validate:"required"`
	NationalID       string          `json:"national_id" validate:"required,len=8"`
	PhoneNumber      string          `json:"phone_number" validate:"required,len=10"`
	Email            string          `json:"email" validate:"required,email"`
	DateOfBirth      *time.Time      `json:"date_of_birth"`
	Gender           string          `json:"gender"`
	MaritalStatus    string          `json:"marital_status"`
	EducationLevel   string          `json:"education_level"`
	CountyID         uint            `json:"county_id" validate:"required"`
	Town             string          `json:"town"`
	PostalAddress    string          `json:"postal_address"`
	EmploymentStatus string          `json:"employment_status"`
	EmployerName     string          `json:"employer_name"`
	MonthlyIncome    string          `json:"monthly_income"`
	NextOfKinName    string          `json:"next_of_kin_name"`
	NextOfKinPhone   string          `json:"next_of_kin_phone"`
	PaymentMethod    string          `json:"payment_method"`
	MpesaNumber      string          `json:"mpesa_number"`
	BankAccount      string          `json:"bank_account"`
	LoanPurpose      string          `json:"loan_purpose" validate:"required"`
	RequestedAmount  decimal.Decimal `json:"requested_amount" validate:"required"`
	RepaymentPeriod  int             `json:"repayment_period" validate:"required"`
}

// PayFeeInput carries the payment channel for a fee charge
type PayFeeInput struct {
	Method string `json:"method" validate:"required"`
}

// ApproveInput carries the reviewer decision fields
type ApproveInput struct {
	ApprovedAmount decimal.Decimal `json:"approved_amount" validate:"required"`
	ReviewNotes    string          `json:"review_notes"`
}

// RejectInput carries the rejection reason
type RejectInput struct {
	Reason string `json:"reason" validate:"required"`
}

// DisburseInput carries the payout channel
type DisburseInput struct {
	Method      string `json:"method"`
	PhoneNumber string `json:"phone_number"`
}

// ConfirmPaymentInput carries the settlement details for a reconciled
// bank transfer
type ConfirmPaymentInput struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// CalculateInput carries the standalone repayment calculator fields
type CalculateInput struct {
	Amount          decimal.Decimal  `json:"amount" validate:"required"`
	InterestRate    *decimal.Decimal `json:"interest_rate"`
	RepaymentPeriod int              `json:"repayment_period" validate:"required"`
}

// Calculate runs the repayment calculator without touching any
// application. The interest rate falls back to the standard rate when
// the caller leaves it out.
func (s *LoanService) Calculate(input *CalculateInput) (*domain.AmortizationResult, error) {
	if input.Amount.LessThan(domain.MinRequestedAmount) {
		return nil, domain.ErrAmountBelowMinimum
	}
	if input.RepaymentPeriod < domain.MinRepaymentPeriod || input.RepaymentPeriod > domain.MaxRepaymentPeriod {
		return nil, domain.ErrInvalidRepaymentPeriod
	}

	rate := domain.DefaultInterestRate
	if input.InterestRate != nil {
		if input.InterestRate.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		rate = *input.InterestRate
	}

	result := domain.ComputeAmortization(input.Amount, rate, input.RepaymentPeriod)
	return &result, nil
}

func (s *LoanService) validateInput(ctx context.Context, input *ApplicationInput) error {
	if input.RequestedAmount.LessThan(domain.MinRequestedAmount) {
		return domain.ErrAmountBelowMinimum
	}
	if input.RepaymentPeriod < domain.MinRepaymentPeriod || input.RepaymentPeriod > domain.MaxRepaymentPeriod {
		return domain.ErrInvalidRepaymentPeriod
	}
	if !phonePattern.MatchString(input.PhoneNumber) {
		return domain.ErrInvalidInput
	}
	if !nationalIDPattern.MatchString(input.NationalID) {
		return domain.ErrInvalidInput
	}

	exists, err := s.countyRepo.Exists(ctx, input.CountyID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrCountyNotFound
	}
	return nil
}

func applyInput(app *models.LoanApplication, input *ApplicationInput) {
	app.FirstName = input.FirstName
	app.LastName = input.LastName
	app.NationalID = input.NationalID
	app.PhoneNumber = input.PhoneNumber
	app.Email = input.Email
	app.DateOfBirth = input.DateOfBirth
	app.Gender = input.Gender
	app.MaritalStatus = input.MaritalStatus
	app.EducationLevel = input.EducationLevel
	app.CountyID = input.CountyID
	app.Town = input.Town
	app.PostalAddress = input.PostalAddress
	app.EmploymentStatus = input.EmploymentStatus
	app.EmployerName = input.EmployerName
	app.MonthlyIncome = input.MonthlyIncome
	app.NextOfKinName = input.NextOfKinName
	app.NextOfKinPhone = input.NextOfKinPhone
	app.PaymentMethod = input.PaymentMethod
	app.MpesaNumber = input.MpesaNumber
	app.BankAccount = input.BankAccount
	app.LoanPurpose = input.LoanPurpose
	app.RequestedAmount = input.RequestedAmount
	app.RepaymentPeriod = input.RepaymentPeriod
}

// Create opens a new application in draft
func (s *LoanService) Create(ctx context.Context, userID uint, input *ApplicationInput) (*models.LoanApplicationResponse, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	app := &models.LoanApplication{
		ApplicationID: uuid.New().String(),
		UserID:        userID,
		InterestRate:  domain.DefaultInterestRate,
		Status:        string(domain.StatusDraft),
	}
	applyInput(app, input)

	if err := s.loanRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	created, err := s.loanRepo.GetByID(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan application created: %s (user %d)", app.ApplicationID, userID)
	return created.ToResponse(), nil
}

// Update edits an application. Only drafts are editable.
func (s *LoanService) Update(ctx context.Context, userID uint, applicationID string, input *ApplicationInput) (*models.LoanApplicationResponse, error) {
	app, err := s.getOwned(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != string(domain.StatusDraft) {
		return nil, domain.ErrApplicationNotEditable
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	applyInput(app, input)
	if err := s.loanRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	updated, err := s.loanRepo.GetByID(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	return updated.ToResponse(), nil
}

// Submit moves a draft into the workflow
func (s *LoanService) Submit(ctx context.Context, userID uint, applicationID string) (*models.LoanApplicationResponse, error) {
	app, err := s.getOwned(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(domain.Status(app.Status), domain.StatusSubmitted) {
		return nil, domain.ErrInvalidStateTransition
	}

	now := time.Now()
	err = s.loanRepo.UpdateStatus(ctx, app.ID,
		string(domain.StatusDraft), string(domain.StatusSubmitted),
		map[string]interface{}{"submitted_at": &now})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Application submitted: %s", app.ApplicationID)
	return s.respond(ctx, app.ID)
}

// PayServiceFee charges the 5% service fee and moves the application
// into review. The ledger entry and the status flip commit together.
func (s *LoanService) PayServiceFee(ctx context.Context, userID uint, applicationID string, input *PayFeeInput) (*models.LoanApplicationResponse, error) {
	app, err := s.getOwned(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != string(domain.StatusSubmitted) {
		return nil, domain.ErrInvalidStateTransition
	}

	method := domain.PaymentMethod(input.Method)
	if method != domain.MethodMpesa && method != domain.MethodBankTransfer {
		return nil, domain.ErrInvalidInput
	}

	amount := app.ServiceFeeAmount()
	txID, err := s.gateway.Charge(ctx, app.PhoneNumber, amount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.uow.WithinTx(ctx, func(repos repositories.Repositories) error {
		payment := &models.Payment{
			LoanApplicationID: app.ID,
			Reference:         reference.New(reference.PrefixServiceFee),
			FeeType:           string(domain.FeeServiceFee),
			Amount:            amount,
			Method:            string(method),
			Status:            string(domain.PaymentCompleted),
			TransactionID:     txID,
			PaidAt:            &now,
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}
		return repos.Loans.UpdateStatus(ctx, app.ID,
			string(domain.StatusSubmitted), string(domain.StatusUnderReview),
			map[string]interface{}{"reviewed_at": &now})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Service fee paid for %s: KES %s", app.ApplicationID, amount.StringFixed(2))
	return s.respond(ctx, app.ID)
}

// Approve accepts an application under review
func (s *LoanService) Approve(ctx context.Context, applicationID string, input *ApproveInput) (*models.LoanApplicationResponse, error) {
	app, err := s.getAny(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != string(domain.StatusUnderReview) {
		return nil, domain.ErrInvalidStateTransition
	}
	if input.ApprovedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrApprovedAmountRequired
	}

	now := time.Now()
	err = s.loanRepo.UpdateStatus(ctx, app.ID,
		string(domain.StatusUnderReview), string(domain.StatusApproved),
		map[string]interface{}{
			"approved_at":     &now,
			"approved_amount": input.ApprovedAmount,
			"review_notes":    input.ReviewNotes,
		})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Application approved: %s (KES %s)", app.ApplicationID, input.ApprovedAmount.StringFixed(2))
	return s.respond(ctx, app.ID)
}

// Reject declines an application. Rejection is terminal.
func (s *LoanService) Reject(ctx context.Context, applicationID string, input *RejectInput) (*models.LoanApplicationResponse, error) {
	app, err := s.getAny(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(domain.Status(app.Status), domain.StatusRejected) {
		return nil, domain.ErrInvalidStateTransition
	}

	now := time.Now()
	err = s.loanRepo.UpdateStatus(ctx, app.ID,
		app.Status, string(domain.StatusRejected),
		map[string]interface{}{
			"rejected_at":   &now,
			"reject_reason": input.Reason,
		})
	if err != nil {
		return nil, err
	}

	log.Printf("⚠️ Application rejected: %s", app.ApplicationID)
	return s.respond(ctx, app.ID)
}

// PayProcessingFee records the flat processing fee on an approved
// application. Mobile money settles immediately, bank transfers stay
// pending until reconciled. The status does not change either way.
func (s *LoanService) PayProcessingFee(ctx context.Context, userID uint, applicationID string, input *PayFeeInput) (*models.LoanApplicationResponse, error) {
	app, err := s.getOwned(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != string(domain.StatusApproved) {
		return nil, domain.ErrInvalidStateTransition
	}

	paid, err := s.paymentRepo.HasCompleted(ctx, app.ID, string(domain.FeeProcessingFee))
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, domain.ErrFeeAlreadyPaid
	}

	method := domain.PaymentMethod(input.Method)
	if method != domain.MethodMpesa && method != domain.MethodBankTransfer {
		return nil, domain.ErrInvalidInput
	}

	payment := &models.Payment{
		LoanApplicationID: app.ID,
		Reference:         reference.New(reference.PrefixProcessingFee),
		FeeType:           string(domain.FeeProcessingFee),
		Amount:            domain.ProcessingFee,
		Method:            string(method),
		Status:            string(domain.PaymentPending),
	}

	if method == domain.MethodMpesa {
		txID, err := s.gateway.Charge(ctx, app.PhoneNumber, domain.ProcessingFee)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		payment.Status = string(domain.PaymentCompleted)
		payment.TransactionID = txID
		payment.PaidAt = &now
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("✅ Processing fee recorded for %s (%s)", app.ApplicationID, payment.Status)
	return s.respond(ctx, app.ID)
}

// ConfirmPayment settles a pending ledger payment by its reference,
// recording the bank transaction id. Only pending payments qualify.
func (s *LoanService) ConfirmPayment(ctx context.Context, paymentReference string, input *ConfirmPaymentInput) (*models.PaymentResponse, error) {
	payment, err := s.paymentRepo.GetByReference(ctx, paymentReference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.Status != string(domain.PaymentPending) {
		return nil, domain.ErrFeeAlreadyPaid
	}
	if input.TransactionID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	payment.Status = string(domain.PaymentCompleted)
	payment.TransactionID = input.TransactionID
	payment.PaidAt = &now
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("✅ Payment reconciled: %s (%s)", payment.Reference, payment.TransactionID)
	return payment.ToResponse(), nil
}

// Disburse pays out an approved application. It requires at least one
// settled ledger payment and refuses a second payout.
func (s *LoanService) Disburse(ctx context.Context, officerID uint, applicationID string, input *DisburseInput) (*models.LoanApplicationResponse, error) {
	app, err := s.getAny(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	exists, err := s.disbursementRepo.ExistsForApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAlreadyDisbursed
	}
	if app.Status != string(domain.StatusApproved) {
		return nil, domain.ErrInvalidStateTransition
	}

	settled, err := s.paymentRepo.HasAnyCompleted(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if !settled {
		return nil, domain.ErrPrerequisiteNotMet
	}

	method := input.Method
	if method == "" {
		method = string(domain.MethodMpesa)
	}
	phone := input.PhoneNumber
	if phone == "" {
		phone = app.PhoneNumber
	}

	amount := app.Principal()
	txID, err := s.gateway.Payout(ctx, phone, amount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.uow.WithinTx(ctx, func(repos repositories.Repositories) error {
		disbursement := &models.LoanDisbursement{
			LoanApplicationID: app.ID,
			Reference:         reference.New(reference.PrefixDisbursement),
			Amount:            amount,
			Method:            method,
			PhoneNumber:       phone,
			TransactionID:     txID,
			DisbursedBy:       officerID,
			DisbursedAt:       now,
		}
		if err := repos.Disbursements.Create(ctx, disbursement); err != nil {
			return err
		}
		return repos.Loans.UpdateStatus(ctx, app.ID,
			string(domain.StatusApproved), string(domain.StatusDisbursed),
			map[string]interface{}{"disbursed_at": &now})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan disbursed: %s KES %s", app.ApplicationID, amount.StringFixed(2))
	return s.respond(ctx, app.ID)
}

// MarkCompleted closes a fully repaid loan
func (s *LoanService) MarkCompleted(ctx context.Context, applicationID string) (*models.LoanApplicationResponse, error) {
	app, err := s.getAny(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != string(domain.StatusDisbursed) {
		return nil, domain.ErrInvalidStateTransition
	}

	now := time.Now()
	err = s.loanRepo.UpdateStatus(ctx, app.ID,
		string(domain.StatusDisbursed), string(domain.StatusCompleted),
		map[string]interface{}{"completed_at": &now})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan completed: %s", app.ApplicationID)
	return s.respond(ctx, app.ID)
}

// Get returns an application. Owners see their own, admins see all.
func (s *LoanService) Get(ctx context.Context, userID uint, isAdmin bool, applicationID string) (*models.LoanApplicationResponse, error) {
	app, err := s.getAny(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && app.UserID != userID {
		return nil, domain.ErrApplicationNotFound
	}
	return app.ToResponse(), nil
}

// List lists applications matching the filter
func (s *LoanService) List(ctx context.Context, filter repositories.LoanFilter, page, limit int) ([]*models.LoanApplicationResponse, int64, error) {
	offset := (page - 1) * limit
	apps, total, err := s.loanRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.LoanApplicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, app.ToResponse())
	}
	return responses, total, nil
}

// ListMine lists the caller's own applications
func (s *LoanService) ListMine(ctx context.Context, userID uint, status string, page, limit int) ([]*models.LoanApplicationResponse, int64, error) {
	return s.List(ctx, repositories.LoanFilter{UserID: &userID, Status: status}, page, limit)
}

// Payments lists the fee ledger for an application
func (s *LoanService) Payments(ctx context.Context, userID uint, isAdmin bool, applicationID string) ([]*models.PaymentResponse, error) {
	app, err := s.getAny(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && app.UserID != userID {
		return nil, domain.ErrApplicationNotFound
	}

	payments, err := s.paymentRepo.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	responses := make([]*models.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		responses = append(responses, payment.ToResponse())
	}
	return responses, nil
}

// Disbursement returns the payout record for an application, or
// ErrNotFound while no payout has happened.
func (s *LoanService) Disbursement(ctx context.Context, userID uint, isAdmin bool, applicationID string) (*models.LoanDisbursementResponse, error) {
	app, err := s.getAny(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && app.UserID != userID {
		return nil, domain.ErrApplicationNotFound
	}

	disbursement, err := s.disbursementRepo.GetByApplication(ctx, app.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return disbursement.ToResponse(), nil
}

func (s *LoanService) getAny(ctx context.Context, applicationID string) (*models.LoanApplication, error) {
	app, err := s.loanRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// getOwned loads an application owned by userID. An ownership mismatch
// reads as not found so application ids cannot be probed.
func (s *LoanService) getOwned(ctx context.Context, userID uint, applicationID string) (*models.LoanApplication, error) {
	app, err := s.getAny(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, domain.ErrApplicationNotFound
	}
	return app, nil
}

func (s *LoanService) respond(ctx context.Context, id uint) (*models.LoanApplicationResponse, error) {
	app, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return app.ToResponse(), nil
}
