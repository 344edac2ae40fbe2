package models

import (
	"time"

	"gorm.io/gorm"
)

// Student is an enrolled child. FeePaid and Balance are a derived cache of
// the completed Payment rows for the student; the payment ledger is the
// authoritative history.
type Student struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	StudentCode string         `gorm:"uniqueIndex;not null" json:"student_code"` // AS + 4 characters
	Name        string         `gorm:"not null" json:"name"`
	Class       string         `gorm:"index;not null" json:"class"`
	FeePaid     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"fee_paid"`
	Balance     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	ParentID    *uint          `gorm:"index" json:"parent_id,omitempty"`
	ParentName  string         `gorm:"not null" json:"parent_name"`
	ParentPhone string         `gorm:"index;not null" json:"parent_phone"`
	Address     string         `gorm:"not null" json:"address"`
	DateOfBirth time.Time      `gorm:"not null" json:"date_of_birth"`
	BloodGroup  string         `gorm:"not null" json:"blood_group"`
	Allergies   string         `gorm:"default:''" json:"allergies"`
	PhotoURL    string         `json:"photo_url,omitempty"`
	EnrolledAt  time.Time      `json:"enrolled_at"`
	CreatedBy   uint           `gorm:"index;not null" json:"created_by"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName names the table.
func (Student) TableName() string {
	return "students"
}
