package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentListFilter filters the student list query.
type StudentListFilter struct {
	Page     int
	PageSize int
	Class    string
	Search   string
	ParentID uint
}

// PaymentListFilter filters the payment list query. CreatedFrom is inclusive,
// CreatedTo exclusive; callers taking calendar dates pass the following
// midnight as CreatedTo.
type PaymentListFilter struct {
	Page        int
	PageSize    int
	StudentID   uint
	ParentID    uint
	Status      string
	Method      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter filters the user list query.
type UserListFilter struct {
	Page     int
	PageSize int
	Role     string
	Keyword  string
}

// PaymentStatusStat is one row of the per-status ledger aggregate.
type PaymentStatusStat struct {
	Status      string          `json:"status"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// PaymentMonthStats aggregates the current calendar month's ledger activity.
type PaymentMonthStats struct {
	TotalPayments     int64           `json:"total_payments"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	CompletedPayments int64           `json:"completed_payments"`
}
