package queue

import (
	"encoding/json"

	"github.com/astra-preschool/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPaymentConfirmationSMS confirmation SMS after a parent confirms payment.
	TaskPaymentConfirmationSMS = constants.TaskPaymentConfirmationSMS
	// TaskFeeReminderSMS fee reminder SMS for an outstanding balance.
	TaskFeeReminderSMS = constants.TaskFeeReminderSMS
	// TaskLedgerReconcile sweep comparing fee caches against the ledger.
	TaskLedgerReconcile = constants.TaskLedgerReconcile
)

// PaymentConfirmationSMSPayload payload for the confirmation SMS task.
type PaymentConfirmationSMSPayload struct {
	PaymentID uint `json:"payment_id"`
}

// FeeReminderSMSPayload payload for the fee reminder task. Message overrides
// the default reminder text when set.
type FeeReminderSMSPayload struct {
	StudentID uint   `json:"student_id"`
	Message   string `json:"message,omitempty"`
}

// LedgerReconcilePayload payload for the reconciliation sweep. Zero StudentID
// sweeps all students.
type LedgerReconcilePayload struct {
	StudentID uint `json:"student_id,omitempty"`
}

// NewPaymentConfirmationSMSTask creates a confirmation SMS task.
func NewPaymentConfirmationSMSTask(payload PaymentConfirmationSMSPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentConfirmationSMS, body), nil
}

// NewFeeReminderSMSTask creates a fee reminder task.
func NewFeeReminderSMSTask(payload FeeReminderSMSPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFeeReminderSMS, body), nil
}

// NewLedgerReconcileTask creates a reconciliation sweep task.
func NewLedgerReconcileTask(payload LedgerReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerReconcile, body), nil
}
