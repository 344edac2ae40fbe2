package constants

// Payment status constants.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// Payment method constants.
const (
	PaymentMethodUPI          = "upi"
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
)

// DefaultPaymentPurpose is the fallback purpose for new payments.
const DefaultPaymentPurpose = "School Fee Payment"

// ReceiptNumberPrefix prefixes every generated receipt number.
const ReceiptNumberPrefix = "AP"

// StudentCodePrefix prefixes every generated student code.
const StudentCodePrefix = "AS"

// User role constants.
const (
	RoleAdmin  = "admin"
	RoleParent = "parent"
)

// Student class constants.
const (
	ClassPlayGroup = "Play Group"
	ClassNursery   = "Nursery"
	ClassLKG       = "LKG"
	ClassUKG       = "UKG"
)

// StudentClasses lists the admissible class values.
var StudentClasses = []string{ClassPlayGroup, ClassNursery, ClassLKG, ClassUKG}

// Queue task type constants.
const (
	TaskPaymentConfirmationSMS = "sms:payment_confirmation"
	TaskFeeReminderSMS         = "sms:fee_reminder"
	TaskLedgerReconcile        = "ledger:reconcile"
)

// Queue name constants.
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)
