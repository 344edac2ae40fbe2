package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Payment is one fee-payment attempt for a student. The receipt number is
// assigned at creation and never changes; status transitions drive the
// student's FeePaid/Balance cache.
type Payment struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	ReceiptNumber     string         `gorm:"uniqueIndex;not null" json:"receipt_number"` // AP + YYYYMMDD + 4-digit sequence
	StudentID         uint           `gorm:"index;not null" json:"student_id"`
	ParentID          uint           `gorm:"index;not null" json:"parent_id"`
	Amount            Money          `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status            string         `gorm:"index;not null;default:'pending'" json:"status"`
	Method            string         `gorm:"not null;default:'upi'" json:"method"`
	Purpose           string         `gorm:"not null" json:"purpose"`
	Notes             string         `gorm:"default:''" json:"notes"`
	UPITransactionID  string         `json:"upi_transaction_id,omitempty"`
	VerifiedBy        *uint          `gorm:"index" json:"verified_by,omitempty"`
	VerifiedAt        *time.Time     `json:"verified_at,omitempty"`
	ConfirmedByParent bool           `gorm:"not null;default:false" json:"confirmed_by_parent"`
	ConfirmedAt       *time.Time     `json:"confirmed_at,omitempty"`
	AcademicYear      string         `json:"academic_year"` // e.g. 2024-2025, fixed at creation
	PaymentMonth      string         `json:"payment_month"` // e.g. May 2024, fixed at creation
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName names the table.
func (Payment) TableName() string {
	return "payments"
}

// AcademicYearAt derives the descriptive academic-year string for a date.
func AcademicYearAt(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Year(), t.Year()+1)
}

// PaymentMonthAt derives the descriptive payment-month string for a date.
func PaymentMonthAt(t time.Time) string {
	return t.Format("January 2006")
}
