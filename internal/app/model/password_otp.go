package model

import (
	"time"
)

// PasswordOTP is the single active one-time code for a user's password
// recovery. The unique index on UserID enforces at most one record per
// account; issuing a new code replaces the old row in place.
//
// The code is a 6-digit string with significant leading zeros. It must
// never be converted to an integer.
type PasswordOTP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Code      string    `gorm:"size:6;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

func (PasswordOTP) TableName() string {
	return "password_otps"
}

// Expired reports whether the code is past its validity window at the
// given instant. Expiry is evaluated at read time; there is no timer.
func (o *PasswordOTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
