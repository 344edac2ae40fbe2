package service

import (
	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReconcileEntry reports one student whose fee cache disagreed with the
// ledger sum of completed payments.
type ReconcileEntry struct {
	StudentID   uint   `json:"student_id"`
	StudentCode string `json:"student_code"`
	CachedPaid  string `json:"cached_paid"`
	LedgerPaid  string `json:"ledger_paid"`
	Repaired    bool   `json:"repaired"`
}

// ReconcileReport is the outcome of one reconciliation sweep.
type ReconcileReport struct {
	Checked int              `json:"checked"`
	Drifted []ReconcileEntry `json:"drifted"`
}

// ReconcileForActor runs a reconciliation sweep on behalf of a caller. Admin
// operation; the worker's periodic sweep calls Reconcile directly.
func (s *PaymentService) ReconcileForActor(actor Actor, studentID uint) (*ReconcileReport, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.Reconcile(studentID)
}

// Reconcile compares each student's cached paid total against the sum of
// completed ledger entries and repairs the cache from the ledger, which is
// authoritative. Zero studentID sweeps every student.
func (s *PaymentService) Reconcile(studentID uint) (*ReconcileReport, error) {
	var students []models.Student
	if studentID != 0 {
		student, err := s.studentRepo.GetByID(studentID)
		if err != nil {
			return nil, err
		}
		if student == nil {
			return nil, ErrStudentNotFound
		}
		students = []models.Student{*student}
	} else {
		all, _, err := s.studentRepo.List(repository.StudentListFilter{})
		if err != nil {
			return nil, err
		}
		students = all
	}

	report := &ReconcileReport{Checked: len(students)}
	for i := range students {
		entry, err := s.reconcileStudent(students[i].ID)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			report.Drifted = append(report.Drifted, *entry)
		}
	}

	if len(report.Drifted) > 0 {
		paymentLogger(
			"checked", report.Checked,
			"drifted", len(report.Drifted),
		).Warnw("ledger_reconcile_drift_found")
	} else {
		paymentLogger("checked", report.Checked).Infow("ledger_reconcile_clean")
	}
	return report, nil
}

func (s *PaymentService) reconcileStudent(studentID uint) (*ReconcileEntry, error) {
	var entry *ReconcileEntry

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		studentRepo := s.studentRepo.WithTx(tx)

		student, err := studentRepo.GetByIDForUpdate(studentID)
		if err != nil {
			return err
		}
		if student == nil {
			return nil
		}

		ledgerPaid, err := paymentRepo.SumCompletedByStudent(student.ID)
		if err != nil {
			return err
		}
		if student.FeePaid.Equal(ledgerPaid) {
			return nil
		}

		entry = &ReconcileEntry{
			StudentID:   student.ID,
			StudentCode: student.StudentCode,
			CachedPaid:  student.FeePaid.String(),
			LedgerPaid:  models.NewMoneyFromDecimal(ledgerPaid).String(),
		}

		// The outstanding balance shifts by the same amount the paid total
		// was off, so an under-counted cache also under-released the balance.
		diff := ledgerPaid.Sub(student.FeePaid.Decimal)
		student.FeePaid = models.NewMoneyFromDecimal(ledgerPaid)
		remaining := student.Balance.Sub(diff)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		student.Balance = models.NewMoneyFromDecimal(remaining)
		if err := studentRepo.Update(student); err != nil {
			return err
		}
		entry.Repaired = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
