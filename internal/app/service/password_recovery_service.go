package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sharkfund/sharkfund-backend/internal/app/model"
	"github.com/sharkfund/sharkfund-backend/internal/app/repository"
	"github.com/sharkfund/sharkfund-backend/pkg/logger"
	"github.com/sharkfund/sharkfund-backend/pkg/mailer"
	"github.com/sharkfund/sharkfund-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("no account found with this email address")
	ErrInvalidOTP       = errors.New("invalid OTP")
	ErrOTPExpired       = errors.New("OTP has expired")
	ErrNoValidOTP       = errors.New("no valid OTP found")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrTooManyRequests  = errors.New("too many OTP requests")
)

// MinPasswordLength is the minimum accepted length for a new password.
const MinPasswordLength = 8

// RateLimiter throttles OTP requests per email. A nil limiter disables
// throttling.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type PasswordRecoveryService interface {
	RequestOTP(email string) error
	VerifyOTP(email, code string) error
	ResetPassword(email, createPassword, confirmPassword string) error
}

type passwordRecoveryService struct {
	userRepo  repository.UserRepository
	otpRepo   repository.OTPRepository
	mailer    mailer.Mailer
	limiter   RateLimiter
	db        *gorm.DB
	otpExpiry time.Duration

	now     func() time.Time // overridable in tests
	entropy io.Reader        // nil means crypto/rand
}

func NewPasswordRecoveryService(
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	mailer mailer.Mailer,
	limiter RateLimiter,
	db *gorm.DB,
	otpExpiry time.Duration,
) PasswordRecoveryService {
	return &passwordRecoveryService{
		userRepo:  userRepo,
		otpRepo:   otpRepo,
		mailer:    mailer,
		limiter:   limiter,
		db:        db,
		otpExpiry: otpExpiry,
		now:       time.Now,
	}
}

// RequestOTP issues a fresh one-time code for the account, replacing any
// previous one, and asks the mailer to deliver it. The response does not
// depend on delivery: the code is committed first and email dispatch is
// fire and forget.
func (s *passwordRecoveryService) RequestOTP(email string) error {
	email = normalizeEmail(email)

	logger.Info("Processing OTP request", map[string]interface{}{
		"email": email,
	})

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(context.Background(), email)
		if err == nil && !allowed {
			logger.Warn("OTP request throttled", map[string]interface{}{
				"email": email,
			})
			return ErrTooManyRequests
		}
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("OTP requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return ErrUserNotFound
		}
		logger.Error("Failed to find user for OTP request", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	code, err := util.GenerateOTP(s.entropy)
	if err != nil {
		logger.Error("Failed to generate OTP", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	now := s.now()
	otp := &model.PasswordOTP{
		UserID:    user.ID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.otpExpiry),
	}

	if err := s.otpRepo.Replace(otp); err != nil {
		logger.Error("Failed to store OTP", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   email,
		})
		return err
	}

	// Delivery happens after the record is durably written. A failure is
	// logged by the mailer and never rolls back the issued code.
	go func(email, username, code string) {
		if err := s.mailer.SendOTP(email, username, code); err != nil {
			logger.Warn("OTP email delivery failed", map[string]interface{}{
				"email": email,
			})
		}
	}(user.Email, user.Username, code)

	logger.Info("OTP issued", map[string]interface{}{
		"user_id":    user.ID,
		"email":      email,
		"expires_at": otp.ExpiresAt,
	})
	return nil
}

// VerifyOTP checks the supplied code against the account's current one
// without consuming it. A missing record and a wrong code are reported
// identically so callers cannot probe which accounts requested a reset.
func (s *passwordRecoveryService) VerifyOTP(email, code string) error {
	email = normalizeEmail(email)

	logger.Debug("Verifying OTP", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		logger.Error("Failed to find user for OTP verification", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	otp, err := s.otpRepo.FindByUserID(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOTP
		}
		logger.Error("Failed to load OTP for verification", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if otp.Expired(s.now()) {
		// An expired code can never validate again; remove it so later
		// attempts see "invalid", not "expired". The delete is keyed on the
		// observed code so a reissue that committed in between survives.
		if err := s.otpRepo.Delete(otp.ID, otp.Code); err != nil {
			return err
		}
		logger.Info("Expired OTP removed during verification", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrOTPExpired
	}

	if !util.SecureCompare(otp.Code, code) {
		logger.Warn("OTP verification failed: wrong code", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrInvalidOTP
	}

	// The record stays valid until reset-password consumes it or it
	// expires. Verification alone does not mutate state.
	logger.Info("OTP verified", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// ResetPassword validates the new password, re-checks the OTP and then,
// in one transaction, overwrites the credential and consumes the code.
// Two concurrent resets racing on the same OTP have at most one winner:
// the consume is a conditional single-row delete, and a transaction that
// deletes nothing rolls back.
func (s *passwordRecoveryService) ResetPassword(email, createPassword, confirmPassword string) error {
	email = normalizeEmail(email)

	logger.Info("Processing password reset", map[string]interface{}{
		"email": email,
	})

	if createPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(createPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	hash, err := util.HashPassword(createPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during password reset, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": user.ID,
			})
		}
	}()

	var otp model.PasswordOTP
	if err := tx.Where("user_id = ?", user.ID).First(&otp).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset without a valid OTP", map[string]interface{}{
				"user_id": user.ID,
			})
			return ErrNoValidOTP
		}
		logger.Error("Failed to load OTP for password reset", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if otp.Expired(s.now()) {
		// Commit only the cleanup so the next attempt reports "no valid
		// OTP" instead of "expired" again. Keyed on the observed code, same
		// as the consume below, so a concurrent reissue is never destroyed.
		if err := tx.Where("id = ? AND code = ?", otp.ID, otp.Code).
			Delete(&model.PasswordOTP{}).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}
		logger.Info("Expired OTP removed during password reset", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrOTPExpired
	}

	if err := tx.Model(&model.User{}).Where("id = ?", user.ID).
		Update("password_hash", hash).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to update password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	// Consume the exact code that was checked above. Zero rows affected
	// means a concurrent reset or reissue got there first; the credential
	// update above rolls back with the transaction.
	res := tx.Where("id = ? AND code = ?", otp.ID, otp.Code).Delete(&model.PasswordOTP{})
	if res.Error != nil {
		tx.Rollback()
		logger.Error("Failed to consume OTP", res.Error, map[string]interface{}{
			"user_id": user.ID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		logger.Warn("Password reset lost the race for the OTP", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrNoValidOTP
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit password reset", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
