package repository

import (
	"testing"
	"time"

	"github.com/sharkfund/sharkfund-backend/internal/app/model"
	"github.com/sharkfund/sharkfund-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOTPRepoTest(t *testing.T) (OTPRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB(t)
	require.NoError(t, err)
	return NewOTPRepository(testDB), testDB
}

func newOTP(userID uint, code string, expiresAt time.Time) *model.PasswordOTP {
	return &model.PasswordOTP{
		UserID:    userID,
		Code:      code,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
}

func TestOTPRepository_ReplaceAndFind(t *testing.T) {
	repo, _ := setupOTPRepoTest(t)

	expiry := time.Now().Add(10 * time.Minute)
	require.NoError(t, repo.Replace(newOTP(1, "123456", expiry)))

	otp, err := repo.FindByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, "123456", otp.Code)
	assert.WithinDuration(t, expiry, otp.ExpiresAt, time.Second)
}

func TestOTPRepository_ReplaceOverwritesExisting(t *testing.T) {
	repo, testDB := setupOTPRepoTest(t)

	require.NoError(t, repo.Replace(newOTP(1, "111111", time.Now().Add(10*time.Minute))))
	require.NoError(t, repo.Replace(newOTP(1, "000042", time.Now().Add(10*time.Minute))))

	otp, err := repo.FindByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, "000042", otp.Code)

	var count int64
	require.NoError(t, testDB.Model(&model.PasswordOTP{}).Where("user_id = ?", 1).Count(&count).Error)
	assert.EqualValues(t, 1, count, "replace must keep a single row per user")
}

func TestOTPRepository_FindByUserID_NotFound(t *testing.T) {
	repo, _ := setupOTPRepoTest(t)

	_, err := repo.FindByUserID(99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOTPRepository_Delete(t *testing.T) {
	repo, _ := setupOTPRepoTest(t)

	require.NoError(t, repo.Replace(newOTP(1, "123456", time.Now().Add(10*time.Minute))))
	otp, err := repo.FindByUserID(1)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(otp.ID, otp.Code))

	_, err = repo.FindByUserID(1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOTPRepository_Delete_StaleCodeIsNoOp(t *testing.T) {
	repo, _ := setupOTPRepoTest(t)

	require.NoError(t, repo.Replace(newOTP(1, "111111", time.Now().Add(10*time.Minute))))
	otp, err := repo.FindByUserID(1)
	require.NoError(t, err)

	// Reissue keeps the same row but swaps the code; a delete keyed on the
	// old code must leave the fresh one alone.
	require.NoError(t, repo.Replace(newOTP(1, "222222", time.Now().Add(10*time.Minute))))
	require.NoError(t, repo.Delete(otp.ID, "111111"))

	current, err := repo.FindByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, "222222", current.Code)
}

func TestOTPRepository_DeleteExpired(t *testing.T) {
	repo, _ := setupOTPRepoTest(t)

	require.NoError(t, repo.Replace(newOTP(1, "111111", time.Now().Add(-time.Minute))))
	require.NoError(t, repo.Replace(newOTP(2, "222222", time.Now().Add(10*time.Minute))))

	require.NoError(t, repo.DeleteExpired())

	_, err := repo.FindByUserID(1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	otp, err := repo.FindByUserID(2)
	require.NoError(t, err)
	assert.Equal(t, "222222", otp.Code)
}
