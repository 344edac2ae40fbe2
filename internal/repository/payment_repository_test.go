package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func decimalFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func setupPaymentRepoTest(t *testing.T) (*GormPaymentRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:payment_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Payment{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewPaymentRepository(db), db
}

func seedPayment(t *testing.T, db *gorm.DB, seq int, studentID, parentID uint, amount int64, status string, createdAt time.Time) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		ReceiptNumber: fmt.Sprintf("AP20260501%04d", seq),
		StudentID:     studentID,
		ParentID:      parentID,
		Amount:        models.NewMoneyFromInt(amount),
		Status:        status,
		Method:        constants.PaymentMethodUPI,
		Purpose:       constants.DefaultPaymentPurpose,
		CreatedAt:     createdAt,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}
	return payment
}

func TestPaymentListFiltersAndOrder(t *testing.T) {
	repo, db := setupPaymentRepoTest(t)
	now := time.Now()

	seedPayment(t, db, 1, 10, 100, 500, constants.PaymentStatusPending, now.Add(-3*time.Hour))
	seedPayment(t, db, 2, 10, 100, 1000, constants.PaymentStatusCompleted, now.Add(-2*time.Hour))
	seedPayment(t, db, 3, 20, 200, 1500, constants.PaymentStatusCompleted, now.Add(-time.Hour))

	payments, total, err := repo.List(PaymentListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(payments) != 3 {
		t.Fatalf("expected 3 entries, got total=%d len=%d", total, len(payments))
	}
	// Newest first.
	if payments[0].ReceiptNumber != "AP202605010003" {
		t.Fatalf("unexpected order, first is %s", payments[0].ReceiptNumber)
	}

	_, total, err = repo.List(PaymentListFilter{StudentID: 10})
	if err != nil {
		t.Fatalf("list by student failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 entries for student, got %d", total)
	}

	_, total, err = repo.List(PaymentListFilter{ParentID: 200})
	if err != nil {
		t.Fatalf("list by parent failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 entry for parent, got %d", total)
	}

	_, total, err = repo.List(PaymentListFilter{Status: constants.PaymentStatusCompleted})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 completed entries, got %d", total)
	}

	from := now.Add(-150 * time.Minute)
	payments, total, err = repo.List(PaymentListFilter{CreatedFrom: &from})
	if err != nil {
		t.Fatalf("list by window failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 entries in window, got %d", total)
	}
	_ = payments

	payments, total, err = repo.List(PaymentListFilter{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if total != 3 || len(payments) != 2 {
		t.Fatalf("pagination off: total=%d len=%d", total, len(payments))
	}
}

func TestPaymentListCreatedWindowBounds(t *testing.T) {
	repo, db := setupPaymentRepoTest(t)

	day := time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)

	seedPayment(t, db, 1, 10, 100, 500, constants.PaymentStatusPending, day)
	lastOfDay := seedPayment(t, db, 2, 10, 100, 500, constants.PaymentStatusPending, nextDay.Add(-time.Second))
	// Exactly at the following midnight: the next calendar day.
	seedPayment(t, db, 3, 10, 100, 500, constants.PaymentStatusPending, nextDay)

	payments, total, err := repo.List(PaymentListFilter{CreatedFrom: &day, CreatedTo: &nextDay})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected the full day and nothing more, got %d", total)
	}
	if payments[0].ID != lastOfDay.ID {
		t.Fatalf("23:59:59 entry should be included, first is %d", payments[0].ID)
	}

	// Lower bound stays inclusive.
	atMidnight := day
	_, total, err = repo.List(PaymentListFilter{CreatedFrom: &atMidnight})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("midnight entry should match created_from, got %d", total)
	}
}

func TestPaymentGetByReceiptNumber(t *testing.T) {
	repo, db := setupPaymentRepoTest(t)

	seeded := seedPayment(t, db, 1, 10, 100, 500, constants.PaymentStatusPending, time.Now())

	payment, err := repo.GetByReceiptNumber(seeded.ReceiptNumber)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if payment == nil || payment.ID != seeded.ID {
		t.Fatalf("unexpected result: %+v", payment)
	}

	payment, err = repo.GetByReceiptNumber("AP999999990000")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if payment != nil {
		t.Fatal("unknown receipt should return nil")
	}

	payment, err = repo.GetByReceiptNumber("  ")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if payment != nil {
		t.Fatal("blank receipt should return nil")
	}
}

func TestPaymentCountAllIncludesSoftDeleted(t *testing.T) {
	repo, db := setupPaymentRepoTest(t)

	first := seedPayment(t, db, 1, 10, 100, 500, constants.PaymentStatusPending, time.Now())
	seedPayment(t, db, 2, 10, 100, 500, constants.PaymentStatusPending, time.Now())

	if err := db.Delete(first).Error; err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	count, err := repo.CountAll()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("soft-deleted rows must count, got %d", count)
	}
}

func TestPaymentStatsByStatus(t *testing.T) {
	repo, db := setupPaymentRepoTest(t)
	now := time.Now()

	seedPayment(t, db, 1, 10, 100, 500, constants.PaymentStatusPending, now)
	seedPayment(t, db, 2, 10, 100, 1000, constants.PaymentStatusCompleted, now)
	seedPayment(t, db, 3, 20, 200, 1500, constants.PaymentStatusCompleted, now)

	stats, err := repo.StatsByStatus()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	byStatus := map[string]PaymentStatusStat{}
	for _, stat := range stats {
		byStatus[stat.Status] = stat
	}
	completed := byStatus[constants.PaymentStatusCompleted]
	if completed.Count != 2 || !completed.TotalAmount.Equal(decimalFromInt(2500)) {
		t.Fatalf("unexpected completed stat: %+v", completed)
	}
	pending := byStatus[constants.PaymentStatusPending]
	if pending.Count != 1 || !pending.TotalAmount.Equal(decimalFromInt(500)) {
		t.Fatalf("unexpected pending stat: %+v", pending)
	}
}

func TestPaymentMonthStatsWindow(t *testing.T) {
	repo, db := setupPaymentRepoTest(t)

	from := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	seedPayment(t, db, 1, 10, 100, 1000, constants.PaymentStatusCompleted, from.Add(time.Hour))
	seedPayment(t, db, 2, 10, 100, 500, constants.PaymentStatusPending, to.Add(-time.Hour))
	// Outside the window on both sides.
	seedPayment(t, db, 3, 10, 100, 900, constants.PaymentStatusCompleted, from.Add(-time.Hour))
	seedPayment(t, db, 4, 10, 100, 900, constants.PaymentStatusCompleted, to)

	stats, err := repo.MonthStats(from, to)
	if err != nil {
		t.Fatalf("month stats failed: %v", err)
	}
	if stats.TotalPayments != 2 {
		t.Fatalf("expected 2 entries in window, got %d", stats.TotalPayments)
	}
	if stats.CompletedPayments != 1 {
		t.Fatalf("expected 1 completed entry, got %d", stats.CompletedPayments)
	}
	if !stats.TotalAmount.Equal(decimalFromInt(1500)) {
		t.Fatalf("unexpected total amount: %s", stats.TotalAmount)
	}
}

func TestSumCompletedByStudent(t *testing.T) {
	repo, db := setupPaymentRepoTest(t)
	now := time.Now()

	seedPayment(t, db, 1, 10, 100, 1000, constants.PaymentStatusCompleted, now)
	seedPayment(t, db, 2, 10, 100, 700, constants.PaymentStatusCompleted, now)
	seedPayment(t, db, 3, 10, 100, 500, constants.PaymentStatusPending, now)
	seedPayment(t, db, 4, 20, 200, 900, constants.PaymentStatusCompleted, now)

	total, err := repo.SumCompletedByStudent(10)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !total.Equal(decimalFromInt(1700)) {
		t.Fatalf("expected 1700, got %s", total)
	}

	total, err = repo.SumCompletedByStudent(99)
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("expected zero for unknown student, got %s", total)
	}
}

func TestListPendingBefore(t *testing.T) {
	repo, db := setupPaymentRepoTest(t)
	now := time.Now()

	old := seedPayment(t, db, 1, 10, 100, 500, constants.PaymentStatusPending, now.Add(-48*time.Hour))
	older := seedPayment(t, db, 2, 10, 100, 500, constants.PaymentStatusPending, now.Add(-72*time.Hour))
	seedPayment(t, db, 3, 10, 100, 500, constants.PaymentStatusPending, now.Add(-time.Hour))
	seedPayment(t, db, 4, 10, 100, 500, constants.PaymentStatusCompleted, now.Add(-48*time.Hour))

	pending, err := repo.ListPendingBefore(now.Add(-24*time.Hour), 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 stale entries, got %d", len(pending))
	}
	// Ordered by ID.
	if pending[0].ID != old.ID || pending[1].ID != older.ID {
		t.Fatalf("unexpected order: %d, %d", pending[0].ID, pending[1].ID)
	}

	pending, err = repo.ListPendingBefore(now.Add(-24*time.Hour), 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("limit not applied, got %d", len(pending))
	}
}
