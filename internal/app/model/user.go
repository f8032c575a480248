package model

import (
	"time"

	"gorm.io/gorm"
)

// User is the account record owned by the wider platform. Password
// recovery only reads it by email and overwrites its credential hash.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // stored lowercase
	Username     string         `gorm:"uniqueIndex;not null" json:"username"` // system-assigned, e.g. ugr_2025_3
	PasswordHash string         `gorm:"not null" json:"-"`
	Address      string         `json:"address"`
	MobileNumber string         `gorm:"size:15" json:"mobile_number"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
