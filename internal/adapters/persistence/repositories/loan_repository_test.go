package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"helacredit/internal/adapters/persistence/models"
	"helacredit/internal/core/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedApplication(t *testing.T, db *gorm.DB, status string) *models.LoanApplication {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &models.User{
		Username: "wanjiku-" + suffix,
		Email:    "wanjiku-" + suffix + "@example.com",
		Password: "x",
		Role:     "USER",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	county := &models.County{Code: "047", Name: "Nairobi"}
	if err := db.FirstOrCreate(county, models.County{Code: "047"}).Error; err != nil {
		t.Fatalf("seed county: %v", err)
	}
	app := &models.LoanApplication{
		ApplicationID:   uuid.NewString(),
		UserID:          user.ID,
		FirstName:       "Wanjiku",
		LastName:        "Kamau",
		NationalID:      "12345678",
		PhoneNumber:     "0712345678",
		Email:           "wanjiku@example.com",
		CountyID:        county.ID,
		LoanPurpose:     string(domain.PurposeBusiness),
		RequestedAmount: decimal.NewFromInt(10000),
		InterestRate:    domain.DefaultInterestRate,
		RepaymentPeriod: 12,
		Status:          status,
	}
	if err := db.Create(app).Error; err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return app
}

func TestUpdateStatusGuardsExpectedState(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	app := seedApplication(t, db, string(domain.StatusDraft))

	err := repo.UpdateStatus(ctx, app.ID, string(domain.StatusDraft), string(domain.StatusSubmitted), nil)
	if err != nil {
		t.Fatalf("first transition: %v", err)
	}

	// A second identical flip must lose the guard.
	err = repo.UpdateStatus(ctx, app.ID, string(domain.StatusDraft), string(domain.StatusSubmitted), nil)
	if err != domain.ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}

	got, err := repo.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != string(domain.StatusSubmitted) {
		t.Errorf("status = %s, want submitted", got.Status)
	}
}

func TestListFiltersByUserAndStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	app := seedApplication(t, db, string(domain.StatusSubmitted))
	seedOther := seedApplication(t, db, string(domain.StatusDraft))
	_ = seedOther

	got, total, err := repo.List(ctx, LoanFilter{UserID: &app.UserID, Status: string(domain.StatusSubmitted)}, 0, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("total = %d, len = %d, want 1/1", total, len(got))
	}
	if got[0].ApplicationID != app.ApplicationID {
		t.Errorf("unexpected application %s", got[0].ApplicationID)
	}
}

func TestCountByStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	seedApplication(t, db, string(domain.StatusDraft))
	seedApplication(t, db, string(domain.StatusDraft))
	seedApplication(t, db, string(domain.StatusApproved))

	tallies, err := repo.CountByStatus(ctx, nil)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	byStatus := make(map[string]int64)
	for _, tally := range tallies {
		byStatus[tally.Status] = tally.Count
	}
	if byStatus[string(domain.StatusDraft)] != 2 {
		t.Errorf("draft count = %d, want 2", byStatus[string(domain.StatusDraft)])
	}
	if byStatus[string(domain.StatusApproved)] != 1 {
		t.Errorf("approved count = %d, want 1", byStatus[string(domain.StatusApproved)])
	}
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	uow := NewGormUoW(db)
	ctx := context.Background()

	app := seedApplication(t, db, string(domain.StatusApproved))

	err := uow.WithinTx(ctx, func(repos Repositories) error {
		if err := repos.Loans.UpdateStatus(ctx, app.ID, string(domain.StatusApproved), string(domain.StatusDisbursed), nil); err != nil {
			return err
		}
		return domain.ErrPrerequisiteNotMet
	})
	if err != domain.ErrPrerequisiteNotMet {
		t.Fatalf("expected rollback error, got %v", err)
	}

	got, err := NewLoanRepository(db).GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != string(domain.StatusApproved) {
		t.Errorf("status = %s, want approved after rollback", got.Status)
	}
}
