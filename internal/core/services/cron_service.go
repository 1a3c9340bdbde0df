package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"helacredit/internal/adapters/persistence/repositories"
)

// Pending bank transfers older than this are written off as failed.
const stalePaymentAge = 7 * 24 * time.Hour

// CronService runs scheduled maintenance jobs
type CronService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	paymentRepo      repositories.PaymentRepository
	scheduler        *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	paymentRepo repositories.PaymentRepository,
) *CronService {
	return &CronService{
		refreshTokenRepo: refreshTokenRepo,
		paymentRepo:      paymentRepo,
		scheduler:        cron.New(),
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() error {
	// Purge expired refresh tokens every night at 02:00
	_, err := s.scheduler.AddFunc("0 2 * * *", func() {
		if err := s.refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
			log.Printf("❌ Expired token cleanup failed: %v", err)
			return
		}
		log.Println("✅ Expired refresh tokens purged")
	})
	if err != nil {
		return err
	}

	// Fail pending payments nobody settled, every night at 02:30
	_, err = s.scheduler.AddFunc("30 2 * * *", func() {
		cutoff := time.Now().Add(-stalePaymentAge)
		n, err := s.paymentRepo.FailStalePending(context.Background(), cutoff)
		if err != nil {
			log.Printf("❌ Stale payment sweep failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("✅ Marked %d stale pending payments as failed", n)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.Start()
	log.Println("🚀 Cron scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.scheduler.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron scheduler stopped")
}
