package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"helacredit/internal/adapters/persistence/models"
	"helacredit/internal/adapters/persistence/repositories"
	"helacredit/internal/core/domain"
)

type loanTestEnv struct {
	db      *gorm.DB
	service *LoanService
	userID  uint
	county  uint
}

func newLoanTestEnv(t *testing.T) *loanTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := &models.User{
		Username: "applicant-" + uuid.NewString()[:8],
		Email:    uuid.NewString()[:8] + "@example.com",
		Password: "x",
		Role:     "USER",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	county := &models.County{Code: "047", Name: "Nairobi"}
	if err := db.Create(county).Error; err != nil {
		t.Fatalf("seed county: %v", err)
	}

	service := NewLoanService(
		repositories.NewLoanRepository(db),
		repositories.NewPaymentRepository(db),
		repositories.NewDisbursementRepository(db),
		repositories.NewCountyRepository(db),
		repositories.NewGormUoW(db),
		NewSimulatedMpesaGateway(),
	)

	return &loanTestEnv{db: db, service: service, userID: user.ID, county: county.ID}
}

func (env *loanTestEnv) input() *ApplicationInput {
	return &ApplicationInput{
		FirstName:       "Wanjiku",
		LastName:        "Kamau",
		NationalID:      "12345678",
		PhoneNumber:     "0712345678",
		Email:           "wanjiku@example.com",
		CountyID:        env.county,
		LoanPurpose:     string(domain.PurposeBusiness),
		RequestedAmount: decimal.NewFromInt(10000),
		RepaymentPeriod: 12,
		PaymentMethod:   string(domain.MethodMpesa),
	}
}

func (env *loanTestEnv) create(t *testing.T) *models.LoanApplicationResponse {
	t.Helper()
	app, err := env.service.Create(context.Background(), env.userID, env.input())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return app
}

func TestCreateValidation(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()

	small := env.input()
	small.RequestedAmount = decimal.NewFromInt(500)
	if _, err := env.service.Create(ctx, env.userID, small); !errors.Is(err, domain.ErrAmountBelowMinimum) {
		t.Errorf("amount: expected ErrAmountBelowMinimum, got %v", err)
	}

	long := env.input()
	long.RepaymentPeriod = 61
	if _, err := env.service.Create(ctx, env.userID, long); !errors.Is(err, domain.ErrInvalidRepaymentPeriod) {
		t.Errorf("period: expected ErrInvalidRepaymentPeriod, got %v", err)
	}

	badCounty := env.input()
	badCounty.CountyID = 999
	if _, err := env.service.Create(ctx, env.userID, badCounty); !errors.Is(err, domain.ErrCountyNotFound) {
		t.Errorf("county: expected ErrCountyNotFound, got %v", err)
	}

	badPhone := env.input()
	badPhone.PhoneNumber = "12345"
	if _, err := env.service.Create(ctx, env.userID, badPhone); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("phone: expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitIsNotRepeatable(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	app := env.create(t)

	first, err := env.service.Submit(ctx, env.userID, app.ApplicationID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.Status != string(domain.StatusSubmitted) {
		t.Fatalf("status = %s, want submitted", first.Status)
	}
	if first.SubmittedAt == nil {
		t.Error("submitted_at not stamped")
	}

	if _, err := env.service.Submit(ctx, env.userID, app.ApplicationID); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("second submit: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestServiceFeeMovesIntoReview(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	app := env.create(t)

	if _, err := env.service.Submit(ctx, env.userID, app.ApplicationID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	got, err := env.service.PayServiceFee(ctx, env.userID, app.ApplicationID, &PayFeeInput{Method: string(domain.MethodMpesa)})
	if err != nil {
		t.Fatalf("pay service fee: %v", err)
	}
	if got.Status != string(domain.StatusUnderReview) {
		t.Errorf("status = %s, want under_review", got.Status)
	}

	if len(got.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(got.Payments))
	}
	payment := got.Payments[0]
	if payment.Status != string(domain.PaymentCompleted) {
		t.Errorf("payment status = %s, want completed", payment.Status)
	}
	if payment.FeeType != string(domain.FeeServiceFee) {
		t.Errorf("fee type = %s, want service_fee", payment.FeeType)
	}
	// 5% of 10000
	if !payment.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("amount = %v, want 500", payment.Amount)
	}

	// Fee cannot be charged twice
	if _, err := env.service.PayServiceFee(ctx, env.userID, app.ApplicationID, &PayFeeInput{Method: string(domain.MethodMpesa)}); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("second fee: expected ErrInvalidStateTransition, got %v", err)
	}
}

func (env *loanTestEnv) advanceToApproved(t *testing.T) *models.LoanApplicationResponse {
	t.Helper()
	ctx := context.Background()
	app := env.create(t)
	if _, err := env.service.Submit(ctx, env.userID, app.ApplicationID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.service.PayServiceFee(ctx, env.userID, app.ApplicationID, &PayFeeInput{Method: string(domain.MethodMpesa)}); err != nil {
		t.Fatalf("service fee: %v", err)
	}
	approved, err := env.service.Approve(ctx, app.ApplicationID, &ApproveInput{
		ApprovedAmount: decimal.NewFromInt(8000),
		ReviewNotes:    "ok",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	return approved
}

func TestApproveSetsAmountAndStamp(t *testing.T) {
	env := newLoanTestEnv(t)
	approved := env.advanceToApproved(t)

	if approved.Status != string(domain.StatusApproved) {
		t.Errorf("status = %s, want approved", approved.Status)
	}
	if !approved.ApprovedAmount.Valid || !approved.ApprovedAmount.Decimal.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("approved amount = %v, want 8000", approved.ApprovedAmount)
	}
	if approved.ApprovedAt == nil {
		t.Error("approved_at not stamped")
	}

	// Amortization follows the approved amount once set
	if approved.Amortization.MonthlyPayment.LessThanOrEqual(decimal.Zero) {
		t.Error("amortization not computed")
	}
}

func TestRejectIsTerminal(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	app := env.create(t)

	if _, err := env.service.Submit(ctx, env.userID, app.ApplicationID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rejected, err := env.service.Reject(ctx, app.ApplicationID, &RejectInput{Reason: "insufficient income"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != string(domain.StatusRejected) {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}
	if rejected.RejectedAt == nil {
		t.Error("rejected_at not stamped")
	}

	if _, err := env.service.Submit(ctx, env.userID, app.ApplicationID); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Errorf("submit after reject: expected ErrInvalidStateTransition, got %v", err)
	}
	if _, err := env.service.Approve(ctx, app.ApplicationID, &ApproveInput{ApprovedAmount: decimal.NewFromInt(1000)}); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Errorf("approve after reject: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestDisburseRequiresCompletedPaymentOnce(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	approved := env.advanceToApproved(t)

	// The service fee already settled, so disbursement may proceed.
	got, err := env.service.Disburse(ctx, env.userID, approved.ApplicationID, &DisburseInput{})
	if err != nil {
		t.Fatalf("disburse: %v", err)
	}
	if got.Status != string(domain.StatusDisbursed) {
		t.Errorf("status = %s, want disbursed", got.Status)
	}
	if got.Disbursement == nil {
		t.Fatal("disbursement record missing")
	}
	if !got.Disbursement.Amount.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("payout = %v, want approved amount 8000", got.Disbursement.Amount)
	}

	if _, err := env.service.Disburse(ctx, env.userID, approved.ApplicationID, &DisburseInput{}); !errors.Is(err, domain.ErrAlreadyDisbursed) {
		t.Fatalf("second disburse: expected ErrAlreadyDisbursed, got %v", err)
	}
}

func TestDisburseFailsWithoutSettledPayment(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	app := env.create(t)

	// Force the application into approved without any ledger entry.
	if err := env.db.Model(&models.LoanApplication{}).
		Where("application_id = ?", app.ApplicationID).
		Updates(map[string]interface{}{
			"status":          string(domain.StatusApproved),
			"approved_amount": decimal.NewFromInt(8000),
		}).Error; err != nil {
		t.Fatalf("force approve: %v", err)
	}

	if _, err := env.service.Disburse(ctx, env.userID, app.ApplicationID, &DisburseInput{}); !errors.Is(err, domain.ErrPrerequisiteNotMet) {
		t.Fatalf("expected ErrPrerequisiteNotMet, got %v", err)
	}

	got, err := env.service.Get(ctx, env.userID, false, app.ApplicationID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != string(domain.StatusApproved) {
		t.Errorf("status = %s, want approved after failed disburse", got.Status)
	}
	if got.Disbursement != nil {
		t.Error("no disbursement should exist after failed precondition")
	}
}

func TestProcessingFeeByChannel(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	approved := env.advanceToApproved(t)

	// An unsettled bank transfer does not block a retry over mobile money
	bank, err := env.service.PayProcessingFee(ctx, env.userID, approved.ApplicationID, &PayFeeInput{Method: string(domain.MethodBankTransfer)})
	if err != nil {
		t.Fatalf("bank processing fee: %v", err)
	}
	if bank.Status != string(domain.StatusApproved) {
		t.Errorf("status = %s, processing fee must not move status", bank.Status)
	}

	mpesa, err := env.service.PayProcessingFee(ctx, env.userID, approved.ApplicationID, &PayFeeInput{Method: string(domain.MethodMpesa)})
	if err != nil {
		t.Fatalf("mpesa processing fee: %v", err)
	}

	// Once a processing fee settled, further charges are refused
	if _, err := env.service.PayProcessingFee(ctx, env.userID, approved.ApplicationID, &PayFeeInput{Method: string(domain.MethodMpesa)}); !errors.Is(err, domain.ErrFeeAlreadyPaid) {
		t.Errorf("repeat processing fee: expected ErrFeeAlreadyPaid, got %v", err)
	}

	var completed, pending int
	for _, payment := range mpesa.Payments {
		if payment.FeeType != string(domain.FeeProcessingFee) {
			continue
		}
		if !payment.Amount.Equal(domain.ProcessingFee) {
			t.Errorf("processing fee amount = %v, want 500", payment.Amount)
		}
		switch payment.Status {
		case string(domain.PaymentCompleted):
			completed++
		case string(domain.PaymentPending):
			pending++
		}
	}
	if completed != 1 || pending != 1 {
		t.Errorf("completed = %d, pending = %d, want 1/1", completed, pending)
	}
}

func TestOwnershipScoping(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	app := env.create(t)

	stranger := &models.User{
		Username: "stranger",
		Email:    "stranger@example.com",
		Password: "x",
		Role:     "USER",
		IsActive: true,
	}
	if err := env.db.Create(stranger).Error; err != nil {
		t.Fatalf("seed stranger: %v", err)
	}

	// Someone else's application reads exactly like a missing one, so
	// ids cannot be probed for existence
	if _, err := env.service.Get(ctx, stranger.ID, false, app.ApplicationID); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Errorf("get: expected ErrApplicationNotFound, got %v", err)
	}
	if _, err := env.service.Get(ctx, stranger.ID, false, "no-such-id"); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Errorf("get unknown id: expected ErrApplicationNotFound, got %v", err)
	}
	if _, err := env.service.Submit(ctx, stranger.ID, app.ApplicationID); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Errorf("submit: expected ErrApplicationNotFound, got %v", err)
	}
	if _, err := env.service.Payments(ctx, stranger.ID, false, app.ApplicationID); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Errorf("payments: expected ErrApplicationNotFound, got %v", err)
	}

	// Admins read everything
	if _, err := env.service.Get(ctx, stranger.ID, true, app.ApplicationID); err != nil {
		t.Errorf("admin get: %v", err)
	}
}

func TestUpdateOnlyInDraft(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	app := env.create(t)

	changed := env.input()
	changed.Town = "Westlands"
	updated, err := env.service.Update(ctx, env.userID, app.ApplicationID, changed)
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if updated.Town != "Westlands" {
		t.Errorf("town = %s, want Westlands", updated.Town)
	}

	if _, err := env.service.Submit(ctx, env.userID, app.ApplicationID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.service.Update(ctx, env.userID, app.ApplicationID, changed); !errors.Is(err, domain.ErrApplicationNotEditable) {
		t.Fatalf("update after submit: expected ErrApplicationNotEditable, got %v", err)
	}
}

func TestMarkCompletedClosesLoan(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	approved := env.advanceToApproved(t)

	if _, err := env.service.Disburse(ctx, env.userID, approved.ApplicationID, &DisburseInput{}); err != nil {
		t.Fatalf("disburse: %v", err)
	}

	done, err := env.service.MarkCompleted(ctx, approved.ApplicationID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != string(domain.StatusCompleted) {
		t.Errorf("status = %s, want completed", done.Status)
	}
	if done.CompletedAt == nil {
		t.Error("completed_at not stamped")
	}

	if _, err := env.service.MarkCompleted(ctx, approved.ApplicationID); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("second complete: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestCalculateValidatesAndDefaultsRate(t *testing.T) {
	env := newLoanTestEnv(t)

	if _, err := env.service.Calculate(&CalculateInput{
		Amount:          decimal.NewFromInt(500),
		RepaymentPeriod: 12,
	}); !errors.Is(err, domain.ErrAmountBelowMinimum) {
		t.Fatalf("low amount: expected ErrAmountBelowMinimum, got %v", err)
	}

	if _, err := env.service.Calculate(&CalculateInput{
		Amount:          decimal.NewFromInt(10000),
		RepaymentPeriod: 61,
	}); !errors.Is(err, domain.ErrInvalidRepaymentPeriod) {
		t.Fatalf("long term: expected ErrInvalidRepaymentPeriod, got %v", err)
	}

	// No rate supplied, the standard 8.00 applies
	got, err := env.service.Calculate(&CalculateInput{
		Amount:          decimal.NewFromInt(10000),
		RepaymentPeriod: 12,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	want := domain.ComputeAmortization(decimal.NewFromInt(10000), domain.DefaultInterestRate, 12)
	if !got.MonthlyPayment.Equal(want.MonthlyPayment) {
		t.Errorf("monthly = %s, want %s", got.MonthlyPayment, want.MonthlyPayment)
	}

	zero := decimal.Zero
	flat, err := env.service.Calculate(&CalculateInput{
		Amount:          decimal.NewFromInt(12000),
		InterestRate:    &zero,
		RepaymentPeriod: 12,
	})
	if err != nil {
		t.Fatalf("zero rate: %v", err)
	}
	if !flat.MonthlyPayment.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("zero-rate monthly = %s, want 1000", flat.MonthlyPayment)
	}
}

func TestConfirmBankTransferSettlesPayment(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	approved := env.advanceToApproved(t)

	if _, err := env.service.PayProcessingFee(ctx, env.userID, approved.ApplicationID, &PayFeeInput{Method: string(domain.MethodBankTransfer)}); err != nil {
		t.Fatalf("bank processing fee: %v", err)
	}

	payments, err := env.service.Payments(ctx, env.userID, false, approved.ApplicationID)
	if err != nil {
		t.Fatalf("payments: %v", err)
	}
	var ref string
	for _, payment := range payments {
		if payment.FeeType == string(domain.FeeProcessingFee) && payment.Status == string(domain.PaymentPending) {
			ref = payment.Reference
		}
	}
	if ref == "" {
		t.Fatal("no pending bank transfer in the ledger")
	}

	if _, err := env.service.ConfirmPayment(ctx, "PAY-DEADBEEF", &ConfirmPaymentInput{TransactionID: "BT-001"}); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Errorf("unknown reference: expected ErrPaymentNotFound, got %v", err)
	}

	confirmed, err := env.service.ConfirmPayment(ctx, ref, &ConfirmPaymentInput{TransactionID: "BT-001"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != string(domain.PaymentCompleted) {
		t.Errorf("status = %s, want completed", confirmed.Status)
	}
	if confirmed.TransactionID != "BT-001" {
		t.Errorf("transaction id = %s, want BT-001", confirmed.TransactionID)
	}
	if confirmed.PaidAt == nil {
		t.Error("paid_at not stamped")
	}

	if _, err := env.service.ConfirmPayment(ctx, ref, &ConfirmPaymentInput{TransactionID: "BT-002"}); !errors.Is(err, domain.ErrFeeAlreadyPaid) {
		t.Errorf("second confirm: expected ErrFeeAlreadyPaid, got %v", err)
	}
}

func TestDisbursementRecordVisibility(t *testing.T) {
	env := newLoanTestEnv(t)
	ctx := context.Background()
	approved := env.advanceToApproved(t)

	if _, err := env.service.Disbursement(ctx, env.userID, false, approved.ApplicationID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("before payout: expected ErrNotFound, got %v", err)
	}

	if _, err := env.service.Disburse(ctx, env.userID, approved.ApplicationID, &DisburseInput{}); err != nil {
		t.Fatalf("disburse: %v", err)
	}

	record, err := env.service.Disbursement(ctx, env.userID, false, approved.ApplicationID)
	if err != nil {
		t.Fatalf("disbursement: %v", err)
	}
	if record.Reference == "" {
		t.Error("disbursement reference missing")
	}
	if !record.Amount.Equal(decimal.RequireFromString("8000")) {
		t.Errorf("amount = %s, want approved 8000", record.Amount)
	}

	stranger := &models.User{
		Username: "othermember",
		Email:    "othermember@example.com",
		Password: "x",
		Role:     "USER",
		IsActive: true,
	}
	if err := env.db.Create(stranger).Error; err != nil {
		t.Fatalf("seed stranger: %v", err)
	}
	if _, err := env.service.Disbursement(ctx, stranger.ID, false, approved.ApplicationID); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Errorf("stranger: expected ErrApplicationNotFound, got %v", err)
	}
}
