package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/sharkfund/sharkfund-backend/internal/app/repository"
	"github.com/sharkfund/sharkfund-backend/pkg/logger"
)

// OTPCleanupScheduler periodically deletes expired OTP rows. Expiry is
// always checked at read time, so this sweep is storage hygiene only.
type OTPCleanupScheduler struct {
	cron    *cron.Cron
	otpRepo repository.OTPRepository
}

func NewOTPCleanupScheduler(otpRepo repository.OTPRepository) *OTPCleanupScheduler {
	return &OTPCleanupScheduler{
		cron:    cron.New(),
		otpRepo: otpRepo,
	}
}

// Start begins the hourly cleanup job
func (s *OTPCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		if err := s.otpRepo.DeleteExpired(); err != nil {
			logger.Error("Scheduled OTP cleanup failed", err)
			return
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for OTP cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("OTP cleanup scheduler started (hourly)", nil)
	return nil
}

// Stop halts the scheduler
func (s *OTPCleanupScheduler) Stop() {
	s.cron.Stop()
	logger.Info("OTP cleanup scheduler stopped", nil)
}
