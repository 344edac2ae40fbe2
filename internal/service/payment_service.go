package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/astra-preschool/internal/config"
	"github.com/astra-preschool/internal/constants"
	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/models"
	"github.com/astra-preschool/internal/payment/upi"
	"github.com/astra-preschool/internal/qr"
	"github.com/astra-preschool/internal/queue"
	"github.com/astra-preschool/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService owns the fee-payment ledger: initiation, parent
// confirmation, admin verification and the student fee-cache mutations that
// ride along with status transitions.
type PaymentService struct {
	cfg         *config.Config
	paymentRepo repository.PaymentRepository
	studentRepo repository.StudentRepository
	userRepo    repository.UserRepository
	queueClient *queue.Client
	smsSvc      *SMSService
}

// NewPaymentService creates the payment service.
func NewPaymentService(cfg *config.Config, paymentRepo repository.PaymentRepository, studentRepo repository.StudentRepository, userRepo repository.UserRepository, queueClient *queue.Client, smsSvc *SMSService) *PaymentService {
	return &PaymentService{
		cfg:         cfg,
		paymentRepo: paymentRepo,
		studentRepo: studentRepo,
		userRepo:    userRepo,
		queueClient: queueClient,
		smsSvc:      smsSvc,
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// InitiatePaymentInput new payment request.
type InitiatePaymentInput struct {
	StudentID uint
	Amount    decimal.Decimal
	Purpose   string
	Notes     string
}

// InitiatePaymentResult pending payment plus the scan-and-pay material.
type InitiatePaymentResult struct {
	Payment   *models.Payment `json:"payment"`
	UPIURI    string          `json:"upi_uri"`
	QRDataURL string          `json:"qr_data_url"`
}

// Initiate opens a pending ledger entry and returns the UPI deep link and QR
// code for the parent to scan. No fee-cache mutation happens here.
func (s *PaymentService) Initiate(actor Actor, input InitiatePaymentInput) (*InitiatePaymentResult, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	student, err := s.studentRepo.GetByID(input.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	if !actor.IsAdmin() {
		if student.ParentID == nil || *student.ParentID != actor.ID {
			return nil, ErrStudentForbidden
		}
	}

	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" {
		purpose = constants.DefaultPaymentPurpose
	}

	parentID := actor.ID
	if actor.IsAdmin() && student.ParentID != nil {
		parentID = *student.ParentID
	}

	now := time.Now()
	payment := &models.Payment{
		StudentID:    student.ID,
		ParentID:     parentID,
		Amount:       models.NewMoneyFromDecimal(input.Amount),
		Status:       constants.PaymentStatusPending,
		Method:       constants.PaymentMethodUPI,
		Purpose:      purpose,
		Notes:        strings.TrimSpace(input.Notes),
		AcademicYear: models.AcademicYearAt(now),
		PaymentMonth: models.PaymentMonthAt(now),
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		receipt, err := s.nextReceiptNumber(paymentRepo, now)
		if err != nil {
			return err
		}
		payment.ReceiptNumber = receipt
		if err := paymentRepo.Create(payment); err != nil {
			if isUniqueViolation(err) {
				return ErrReceiptConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uri := upi.BuildPayURI(upi.PayRequest{
		PayeeID:   s.cfg.UPI.PayeeID,
		PayeeName: s.cfg.UPI.PayeeName,
		Amount:    payment.Amount.Decimal,
		Note:      upi.TransactionNote(purpose, student.Name, student.StudentCode),
	})
	qrDataURL, err := qr.DataURL(uri, s.cfg.UPI.QRSize)
	if err != nil {
		return nil, err
	}

	paymentLogger(
		"payment_id", payment.ID,
		"receipt_number", payment.ReceiptNumber,
		"student_id", student.ID,
		"amount", payment.Amount.String(),
	).Infow("payment_initiated")

	return &InitiatePaymentResult{
		Payment:   payment,
		UPIURI:    uri,
		QRDataURL: qrDataURL,
	}, nil
}

// nextReceiptNumber assigns AP + date + zero-padded all-time sequence inside
// the create transaction. The unique index on receipt_number backstops races.
func (s *PaymentService) nextReceiptNumber(paymentRepo *repository.GormPaymentRepository, now time.Time) (string, error) {
	count, err := paymentRepo.CountAll()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%04d", constants.ReceiptNumberPrefix, now.Format("20060102"), count+1), nil
}

// Get fetches one ledger entry, restricting parents to their own entries.
func (s *PaymentService) Get(actor Actor, paymentID uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if !actor.IsAdmin() && payment.ParentID != actor.ID {
		return nil, ErrPaymentForbidden
	}
	return payment, nil
}

// applyCompletedMutation moves the fee cache for a transition into completed:
// paid total grows, outstanding balance shrinks but never below zero.
func applyCompletedMutation(student *models.Student, amount models.Money) {
	student.FeePaid = models.NewMoneyFromDecimal(student.FeePaid.Add(amount.Decimal))
	remaining := student.Balance.Sub(amount.Decimal)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	student.Balance = models.NewMoneyFromDecimal(remaining)
}

// revertCompletedMutation compensates a transition out of completed: paid
// total shrinks but never below zero, outstanding balance grows back.
func revertCompletedMutation(student *models.Student, amount models.Money) {
	paid := student.FeePaid.Sub(amount.Decimal)
	if paid.IsNegative() {
		paid = decimal.Zero
	}
	student.FeePaid = models.NewMoneyFromDecimal(paid)
	student.Balance = models.NewMoneyFromDecimal(student.Balance.Add(amount.Decimal))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
