package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/queue"

	"gorm.io/gorm"
)

// ConfirmPaymentInput parent confirmation request.
type ConfirmPaymentInput struct {
	PaymentID        uint
	UPITransactionID string
}

// Confirm records the parent's "I have paid" signal: pending moves to
// completed and the student's fee cache absorbs the amount, all inside one
// transaction holding row locks on both the payment and the student.
// Confirming an already-completed payment is a no-op.
func (s *PaymentService) Confirm(actor Actor, input ConfirmPaymentInput) (*models.Payment, error) {
	var confirmed *models.Payment
	alreadyCompleted := false

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		studentRepo := s.studentRepo.WithTx(tx)

		payment, err := paymentRepo.GetByIDForUpdate(input.PaymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		if !actor.IsAdmin() && payment.ParentID != actor.ID {
			return ErrPaymentForbidden
		}

		if payment.Status == constants.PaymentStatusCompleted {
			confirmed = payment
			alreadyCompleted = true
			return nil
		}
		if payment.Status != constants.PaymentStatusPending {
			return ErrPaymentStatusInvalid
		}

		student, err := studentRepo.GetByIDForUpdate(payment.StudentID)
		if err != nil {
			return err
		}
		if student == nil {
			return ErrStudentNotFound
		}

		now := time.Now()
		payment.Status = constants.PaymentStatusCompleted
		payment.ConfirmedByParent = true
		payment.ConfirmedAt = &now
		txnID := strings.TrimSpace(input.UPITransactionID)
		if txnID == "" {
			txnID = fmt.Sprintf("UPI%d", now.UnixMilli())
		}
		payment.UPITransactionID = txnID
		if err := paymentRepo.Update(payment); err != nil {
			return ErrPaymentUpdateFailed
		}

		applyCompletedMutation(student, payment.Amount)
		if err := studentRepo.Update(student); err != nil {
			return ErrPaymentUpdateFailed
		}

		confirmed = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alreadyCompleted {
		logger.Infow("payment_confirm_noop",
			"payment_id", confirmed.ID,
			"status", confirmed.Status,
		)
		return confirmed, nil
	}

	paymentLogger(
		"payment_id", confirmed.ID,
		"receipt_number", confirmed.ReceiptNumber,
		"student_id", confirmed.StudentID,
		"amount", confirmed.Amount.String(),
	).Infow("payment_confirmed")

	s.enqueueConfirmationSMS(confirmed)
	return confirmed, nil
}

// Cancel abandons a pending payment. Cancelled is terminal; no fee-cache
// movement ever happened, so none is reverted.
func (s *PaymentService) Cancel(actor Actor, paymentID uint) (*models.Payment, error) {
	var cancelled *models.Payment

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)

		payment, err := paymentRepo.GetByIDForUpdate(paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		if !actor.IsAdmin() && payment.ParentID != actor.ID {
			return ErrPaymentForbidden
		}
		if payment.Status != constants.PaymentStatusPending {
			return ErrPaymentStatusInvalid
		}

		payment.Status = constants.PaymentStatusCancelled
		if err := paymentRepo.Update(payment); err != nil {
			return ErrPaymentUpdateFailed
		}
		cancelled = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("payment_cancelled",
		"payment_id", cancelled.ID,
		"receipt_number", cancelled.ReceiptNumber,
	)
	return cancelled, nil
}

func (s *PaymentService) enqueueConfirmationSMS(payment *models.Payment) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		s.sendConfirmationSMSDirect(payment)
		return
	}
	err := s.queueClient.EnqueuePaymentConfirmationSMS(queue.PaymentConfirmationSMSPayload{
		PaymentID: payment.ID,
	})
	if err != nil {
		logger.Warnw("payment_confirmation_sms_enqueue_failed",
			"payment_id", payment.ID,
			"error", err,
		)
	}
}

func (s *PaymentService) sendConfirmationSMSDirect(payment *models.Payment) {
	if err := s.DeliverConfirmationSMS(payment.ID); err != nil {
		logger.Warnw("payment_confirmation_sms_send_failed",
			"payment_id", payment.ID,
			"error", err,
		)
	}
}

// DeliverConfirmationSMS sends the receipt text for a completed payment. The
// queue worker calls this; it is also the direct fallback when no queue is
// configured.
func (s *PaymentService) DeliverConfirmationSMS(paymentID uint) error {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}
	if payment.Status != constants.PaymentStatusCompleted {
		return nil
	}
	student, err := s.studentRepo.GetByID(payment.StudentID)
	if err != nil {
		return err
	}
	if student == nil {
		return ErrStudentNotFound
	}
	parent, err := s.userRepo.GetByID(payment.ParentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return ErrUserNotFound
	}
	return s.smsSvc.SendPaymentConfirmation(parent, payment, student)
}
