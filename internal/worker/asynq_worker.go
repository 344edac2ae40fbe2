package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/provider"
	"github.com/astra-preschool/internal/queue"
	"github.com/astra-preschool/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles queued tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registers task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPaymentConfirmationSMS, c.handlePaymentConfirmationSMS)
	mux.HandleFunc(queue.TaskFeeReminderSMS, c.handleFeeReminderSMS)
	mux.HandleFunc(queue.TaskLedgerReconcile, c.handleLedgerReconcile)
}

func (c *Consumer) handlePaymentConfirmationSMS(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_confirmation_sms_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentConfirmationSMSPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_confirmation_sms_unmarshal_failed", "error", err)
		return err
	}
	if payload.PaymentID == 0 {
		logger.Debugw("worker_payment_confirmation_sms_skip_invalid_payload", "payment_id", payload.PaymentID)
		return nil
	}
	if c.PaymentService == nil {
		logger.Warnw("worker_payment_confirmation_sms_skip_service_nil", "payment_id", payload.PaymentID)
		return nil
	}
	if err := c.PaymentService.DeliverConfirmationSMS(payload.PaymentID); err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			logger.Debugw("worker_payment_confirmation_sms_skip_payment_not_found", "payment_id", payload.PaymentID)
			return nil
		case errors.Is(err, service.ErrSMSDisabled):
			logger.Debugw("worker_payment_confirmation_sms_skip_sms_disabled", "payment_id", payload.PaymentID)
			return nil
		case errors.Is(err, service.ErrPhoneMissing):
			logger.Debugw("worker_payment_confirmation_sms_skip_phone_missing", "payment_id", payload.PaymentID)
			return nil
		case errors.Is(err, service.ErrUnknownCarrier):
			logger.Debugw("worker_payment_confirmation_sms_skip_unknown_carrier", "payment_id", payload.PaymentID)
			return nil
		default:
			logger.Warnw("worker_payment_confirmation_sms_failed", "payment_id", payload.PaymentID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleFeeReminderSMS(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_fee_reminder_sms_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.FeeReminderSMSPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_fee_reminder_sms_unmarshal_failed", "error", err)
		return err
	}
	if payload.StudentID == 0 {
		logger.Debugw("worker_fee_reminder_sms_skip_invalid_payload", "student_id", payload.StudentID)
		return nil
	}
	if c.PaymentService == nil {
		logger.Warnw("worker_fee_reminder_sms_skip_service_nil", "student_id", payload.StudentID)
		return nil
	}
	if err := c.PaymentService.DeliverReminderSMS(payload.StudentID, payload.Message); err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			logger.Debugw("worker_fee_reminder_sms_skip_student_not_found", "student_id", payload.StudentID)
			return nil
		case errors.Is(err, service.ErrSMSDisabled):
			logger.Debugw("worker_fee_reminder_sms_skip_sms_disabled", "student_id", payload.StudentID)
			return nil
		case errors.Is(err, service.ErrPhoneMissing):
			logger.Debugw("worker_fee_reminder_sms_skip_phone_missing", "student_id", payload.StudentID)
			return nil
		case errors.Is(err, service.ErrUnknownCarrier):
			logger.Debugw("worker_fee_reminder_sms_skip_unknown_carrier", "student_id", payload.StudentID)
			return nil
		default:
			logger.Warnw("worker_fee_reminder_sms_failed", "student_id", payload.StudentID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleLedgerReconcile(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_ledger_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LedgerReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_ledger_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if c.PaymentService == nil {
		logger.Warnw("worker_ledger_reconcile_skip_service_nil", "student_id", payload.StudentID)
		return nil
	}
	report, err := c.PaymentService.Reconcile(payload.StudentID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			logger.Debugw("worker_ledger_reconcile_skip_student_not_found", "student_id", payload.StudentID)
			return nil
		}
		logger.Warnw("worker_ledger_reconcile_failed", "student_id", payload.StudentID, "error", err)
		return err
	}
	logger.Infow("worker_ledger_reconcile_done",
		"student_id", payload.StudentID,
		"checked", report.Checked,
		"drifted", len(report.Drifted),
	)
	return nil
}
