package repository

import (
	"time"

	"github.com/sharkfund/sharkfund-backend/internal/app/model"
	"github.com/sharkfund/sharkfund-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OTPRepository persists the single active one-time code per user.
// Consuming a code during password reset happens inside the reset
// transaction in the service layer, not here, so that the credential
// update and the delete commit as one unit.
type OTPRepository interface {
	Replace(otp *model.PasswordOTP) error
	FindByUserID(userID uint) (*model.PasswordOTP, error)
	Delete(id uint, code string) error
	DeleteExpired() error
}

type otpRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

// Replace writes the user's current OTP, overwriting any previous one in
// a single upsert. The unique index on user_id makes the replacement
// atomic: no reader can observe an old code with a new expiry.
func (r *otpRepository) Replace(otp *model.PasswordOTP) error {
	logger.Debug("Replacing OTP in database", map[string]interface{}{
		"user_id": otp.UserID,
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "created_at", "expires_at"}),
	}).Create(otp).Error
	if err != nil {
		logger.Error("Failed to replace OTP in database", err, map[string]interface{}{
			"user_id": otp.UserID,
		})
		return err
	}

	logger.Debug("OTP replaced in database", map[string]interface{}{
		"user_id":    otp.UserID,
		"expires_at": otp.ExpiresAt,
	})
	return nil
}

func (r *otpRepository) FindByUserID(userID uint) (*model.PasswordOTP, error) {
	logger.Debug("Finding OTP by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var otp model.PasswordOTP
	if err := r.db.Where("user_id = ?", userID).First(&otp).Error; err != nil {
		return nil, err
	}

	return &otp, nil
}

// Delete removes the record only while it still holds the observed code.
// A reissue that committed in between keeps its fresh code intact.
func (r *otpRepository) Delete(id uint, code string) error {
	logger.Debug("Deleting OTP from database", map[string]interface{}{
		"otp_id": id,
	})

	if err := r.db.Where("id = ? AND code = ?", id, code).Delete(&model.PasswordOTP{}).Error; err != nil {
		logger.Error("Failed to delete OTP from database", err, map[string]interface{}{
			"otp_id": id,
		})
		return err
	}

	return nil
}

// DeleteExpired removes stale rows for storage hygiene. Correctness does
// not depend on it: expiry is always re-checked at read time.
func (r *otpRepository) DeleteExpired() error {
	result := r.db.Where("expires_at < ?", time.Now()).Delete(&model.PasswordOTP{})
	if result.Error != nil {
		logger.Error("Failed to delete expired OTPs from database", result.Error, nil)
		return result.Error
	}

	if result.RowsAffected > 0 {
		logger.Info("Expired OTPs deleted from database", map[string]interface{}{
			"count": result.RowsAffected,
		})
	}
	return nil
}
