package models

import (
	"time"

	"gorm.io/gorm"
)

// OtpCode is a one-time login code delivered over SMS. Rows double as the
// fallback store when Redis is not configured.
type OtpCode struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Phone     string         `gorm:"index;not null" json:"phone"`
	Code      string         `gorm:"not null" json:"-"`
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"`
	UsedAt    *time.Time     `json:"used_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName names the table.
func (OtpCode) TableName() string {
	return "otp_codes"
}

// Usable reports whether the code can still redeem a login at the given time.
func (c *OtpCode) Usable(now time.Time) bool {
	return c != nil && c.UsedAt == nil && now.Before(c.ExpiresAt)
}
