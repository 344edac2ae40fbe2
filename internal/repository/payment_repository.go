package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository data access for the payment ledger.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	Update(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetByIDForUpdate(id uint) (*models.Payment, error)
	GetByReceiptNumber(receipt string) (*models.Payment, error)
	List(filter PaymentListFilter) ([]models.Payment, int64, error)
	ListPendingBefore(cutoff time.Time, limit int) ([]models.Payment, error)
	CountAll() (int64, error)
	StatsByStatus() ([]PaymentStatusStat, error)
	MonthStats(from, to time.Time) (*PaymentMonthStats, error)
	SumCompletedByStudent(studentID uint) (decimal.Decimal, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM implementation.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates the payment repository.
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create creates a ledger entry.
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// Update saves a ledger entry.
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetByID gets a ledger entry by ID.
func (r *GormPaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetByIDForUpdate gets a ledger entry by ID holding a row lock. Call inside
// a transaction before a status transition.
func (r *GormPaymentRepository) GetByIDForUpdate(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetByReceiptNumber gets a ledger entry by receipt number.
func (r *GormPaymentRepository) GetByReceiptNumber(receipt string) (*models.Payment, error) {
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		return nil, nil
	}
	var payment models.Payment
	result := r.db.Where("receipt_number = ?", receipt).Limit(1).Find(&payment)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &payment, nil
}

// List lists ledger entries with filters, newest first.
func (r *GormPaymentRepository) List(filter PaymentListFilter) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{})

	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.ParentID != 0 {
		query = query.Where("parent_id = ?", filter.ParentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var payments []models.Payment
	if err := query.Order("id desc").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListPendingBefore lists pending entries created before the cutoff, oldest
// first, for the stale-payment sweep.
func (r *GormPaymentRepository) ListPendingBefore(cutoff time.Time, limit int) ([]models.Payment, error) {
	query := r.db.
		Where("status = ? AND created_at < ?", constants.PaymentStatusPending, cutoff).
		Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// CountAll counts all ledger entries, soft-deleted included, for receipt
// sequence generation.
func (r *GormPaymentRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.Payment{}).Count(&count).Error
	return count, err
}

type statusStatRow struct {
	Status      string
	Count       int64
	TotalAmount decimal.Decimal
}

// StatsByStatus aggregates count and amount per ledger status.
func (r *GormPaymentRepository) StatsByStatus() ([]PaymentStatusStat, error) {
	var rows []statusStatRow
	err := r.db.Model(&models.Payment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount").
		Group("status").
		Order("status asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stats := make([]PaymentStatusStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, PaymentStatusStat{
			Status:      row.Status,
			Count:       row.Count,
			TotalAmount: row.TotalAmount,
		})
	}
	return stats, nil
}

// MonthStats aggregates ledger activity created within [from, to).
func (r *GormPaymentRepository) MonthStats(from, to time.Time) (*PaymentMonthStats, error) {
	var row struct {
		TotalPayments     int64
		TotalAmount       decimal.Decimal
		CompletedPayments int64
	}
	err := r.db.Model(&models.Payment{}).
		Select(
			"COUNT(*) AS total_payments, "+
				"COALESCE(SUM(amount), 0) AS total_amount, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_payments",
			constants.PaymentStatusCompleted,
		).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &PaymentMonthStats{
		TotalPayments:     row.TotalPayments,
		TotalAmount:       row.TotalAmount,
		CompletedPayments: row.CompletedPayments,
	}, nil
}

// SumCompletedByStudent sums the completed ledger amounts for a student.
// The reconciliation sweep compares this against the student's fee cache.
func (r *GormPaymentRepository) SumCompletedByStudent(studentID uint) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("student_id = ? AND status = ?", studentID, constants.PaymentStatusCompleted).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
