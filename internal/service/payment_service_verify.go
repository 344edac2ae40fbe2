package service

import (
	"strings"
	"time"

	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/models"

	"gorm.io/gorm"
)

// VerifyPaymentInput admin audit decision.
type VerifyPaymentInput struct {
	PaymentID uint
	Verified  bool
	Notes     string
}

// Verify records the admin audit of a payment. Approving a pending or failed
// entry moves it to completed and applies the fee-cache mutation; rejecting a
// completed entry moves it to failed and compensates the earlier mutation.
// Re-approving after a rejection therefore nets out to a single application.
// Cancelled entries reject every transition.
func (s *PaymentService) Verify(actor Actor, input VerifyPaymentInput) (*models.Payment, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	var verified *models.Payment

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
		if payment.Status == constants.PaymentStatusCancelled {
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
		studentDirty := false

		if input.Verified {
			switch payment.Status {
			case constants.PaymentStatusCompleted:
				// Already applied; just stamp the audit.
			case constants.PaymentStatusPending, constants.PaymentStatusFailed:
				payment.Status = constants.PaymentStatusCompleted
				applyCompletedMutation(student, payment.Amount)
				studentDirty = true
			}
		} else {
			switch payment.Status {
			case constants.PaymentStatusCompleted:
				payment.Status = constants.PaymentStatusFailed
				revertCompletedMutation(student, payment.Amount)
				studentDirty = true
			case constants.PaymentStatusPending:
				payment.Status = constants.PaymentStatusFailed
			case constants.PaymentStatusFailed:
				// Already failed; just stamp the audit.
			}
		}

		payment.VerifiedBy = &actor.ID
		payment.VerifiedAt = &now
		if notes := strings.TrimSpace(input.Notes); notes != "" {
			payment.Notes = notes
		}
		if err := paymentRepo.Update(payment); err != nil {
			return ErrPaymentUpdateFailed
		}
		if studentDirty {
			if err := studentRepo.Update(student); err != nil {
				return ErrPaymentUpdateFailed
			}
		}

		verified = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	paymentLogger(
		"payment_id", verified.ID,
		"receipt_number", verified.ReceiptNumber,
		"verified", input.Verified,
		"new_status", verified.Status,
		"admin_id", actor.ID,
	).Infow("payment_verified")

	return verified, nil
}
