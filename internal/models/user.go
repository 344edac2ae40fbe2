package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account holder: school administrator or parent.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"index" json:"email,omitempty"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Phone        string         `gorm:"index" json:"phone,omitempty"`
	Carrier      string         `json:"carrier,omitempty"` // SMS gateway carrier key
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"index;not null;default:'parent'" json:"role"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Students linked to a parent account.
	Students []Student `gorm:"foreignKey:ParentID" json:"students,omitempty"`
}

// TableName names the table.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}
