package services

import (
	"context"

	"github.com/shopspring/decimal"

	"helacredit/internal/adapters/persistence/repositories"
	"helacredit/internal/core/domain"
)

// DashboardService aggregates portfolio reporting
type DashboardService struct {
	userRepo         repositories.UserRepository
	loanRepo         repositories.LoanRepository
	paymentRepo      repositories.PaymentRepository
	disbursementRepo repositories.DisbursementRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	userRepo repositories.UserRepository,
	loanRepo repositories.LoanRepository,
	paymentRepo repositories.PaymentRepository,
	disbursementRepo repositories.DisbursementRepository,
) *DashboardService {
	return &DashboardService{
		userRepo:         userRepo,
		loanRepo:         loanRepo,
		paymentRepo:      paymentRepo,
		disbursementRepo: disbursementRepo,
	}
}

// UserDashboard builds the applicant's own overview
func (s *DashboardService) UserDashboard(ctx context.Context, userID uint) (*domain.DashboardStats, error) {
	tallies, err := s.loanRepo.CountByStatus(ctx, &userID)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{DisbursedAmount: decimal.Zero}
	active := make(map[string]bool)
	for _, status := range domain.ActiveStatuses {
		active[string(status)] = true
	}
	for _, tally := range tallies {
		stats.TotalApplications += tally.Count
		if active[tally.Status] {
			stats.ActiveApplications += tally.Count
		}
	}

	disbursed, err := s.loanRepo.SumAmounts(ctx, "approved_amount", string(domain.StatusDisbursed), &userID)
	if err != nil {
		return nil, err
	}
	stats.DisbursedAmount = disbursed

	pending, err := s.paymentRepo.CountPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.PendingPayments = pending

	latest, err := s.loanRepo.LatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.LatestApplicationAt = latest

	return stats, nil
}

// AdminDashboard builds the back office portfolio overview
func (s *DashboardService) AdminDashboard(ctx context.Context) (*domain.AdminDashboardStats, error) {
	tallies, err := s.loanRepo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}

	stats := &domain.AdminDashboardStats{
		ByStatus:       make(map[string]int64),
		TotalRequested: decimal.Zero,
		TotalDisbursed: decimal.Zero,
		FeesCollected:  decimal.Zero,
	}
	for _, tally := range tallies {
		stats.TotalApplications += tally.Count
		stats.ByStatus[tally.Status] = tally.Count
	}
	stats.ReviewQueueSize = stats.ByStatus[string(domain.StatusSubmitted)] +
		stats.ByStatus[string(domain.StatusUnderReview)]

	requested, err := s.loanRepo.SumAmounts(ctx, "requested_amount", "", nil)
	if err != nil {
		return nil, err
	}
	stats.TotalRequested = requested

	disbursed, err := s.disbursementRepo.SumAmount(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalDisbursed = disbursed

	fees, err := s.paymentRepo.SumCompleted(ctx)
	if err != nil {
		return nil, err
	}
	stats.FeesCollected = fees

	return stats, nil
}
