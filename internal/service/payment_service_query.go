package service

import (
	"time"

	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/repository"
)

// History lists ledger entries newest first. Parents are forced onto their
// own entries regardless of the requested filter.
func (s *PaymentService) History(actor Actor, filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	if !actor.IsAdmin() {
		filter.ParentID = actor.ID
	}
	return s.paymentRepo.List(filter)
}

// HistoryForStudent lists a student's ledger entries with the same scoping.
func (s *PaymentService) HistoryForStudent(actor Actor, studentID uint, page, pageSize int) ([]models.Payment, int64, error) {
	student, err := s.studentRepo.GetByID(studentID)
	if err != nil {
		return nil, 0, err
	}
	if student == nil {
		return nil, 0, ErrStudentNotFound
	}
	if !actor.IsAdmin() {
		if student.ParentID == nil || *student.ParentID != actor.ID {
			return nil, 0, ErrStudentForbidden
		}
	}
	return s.paymentRepo.List(repository.PaymentListFilter{
		Page:      page,
		PageSize:  pageSize,
		StudentID: studentID,
	})
}

// PaymentStats per-status totals plus the current calendar month's activity.
type PaymentStats struct {
	ByStatus     []repository.PaymentStatusStat `json:"by_status"`
	CurrentMonth repository.PaymentMonthStats   `json:"current_month"`
}

// Stats aggregates the ledger for the admin dashboard.
func (s *PaymentService) Stats(actor Actor) (*PaymentStats, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	byStatus, err := s.paymentRepo.StatsByStatus()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	month, err := s.paymentRepo.MonthStats(monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	return &PaymentStats{
		ByStatus:     byStatus,
		CurrentMonth: *month,
	}, nil
}
