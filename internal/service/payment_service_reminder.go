package service

import (
	"strings"

	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/queue"
)

// SendReminder queues a fee-reminder SMS for a student with an outstanding
// balance. Admin operation; an empty message falls back to the standard
// reminder text.
func (s *PaymentService) SendReminder(actor Actor, studentID uint, message string) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}

	student, err := s.studentRepo.GetByID(studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return ErrStudentNotFound
	}

	if s.queueClient != nil && s.queueClient.Enabled() {
		err := s.queueClient.EnqueueFeeReminderSMS(queue.FeeReminderSMSPayload{
			StudentID: studentID,
			Message:   strings.TrimSpace(message),
		})
		if err != nil {
			return err
		}
		logger.Infow("fee_reminder_enqueued", "student_id", studentID)
		return nil
	}

	return s.DeliverReminderSMS(studentID, message)
}

// DeliverReminderSMS sends the reminder text. The queue worker calls this;
// it is also the direct fallback when no queue is configured. The carrier
// comes from the linked parent account when one exists.
func (s *PaymentService) DeliverReminderSMS(studentID uint, message string) error {
	student, err := s.studentRepo.GetByID(studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return ErrStudentNotFound
	}

	phone := student.ParentPhone
	carrier := ""
	if student.ParentID != nil {
		parent, err := s.userRepo.GetByID(*student.ParentID)
		if err != nil {
			return err
		}
		if parent != nil {
			if strings.TrimSpace(parent.Phone) != "" {
				phone = parent.Phone
			}
			carrier = parent.Carrier
		}
	}

	if err := s.smsSvc.SendFeeReminder(phone, carrier, student, message); err != nil {
		return err
	}
	logger.Infow("fee_reminder_sent",
		"student_id", student.ID,
		"student_code", student.StudentCode,
	)
	return nil
}
