package service

import "errors"

// Account and authentication errors.
var (
	ErrUserNotFound       = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already registered")
	ErrPhoneTaken         = errors.New("phone number is already registered")
	ErrCaptchaInvalid     = errors.New("captcha verification failed")
	ErrTooManyAttempts    = errors.New("too many attempts, try again later")
	ErrOtpInvalid         = errors.New("invalid or expired verification code")
	ErrOtpSendUnavailable = errors.New("verification code delivery is unavailable")
	ErrAdminOnly          = errors.New("administrator access required")
)

// Student record errors.
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrStudentCodeTaken = errors.New("student code is already in use")
	ErrInvalidClass     = errors.New("unknown class name")
	ErrStudentForbidden = errors.New("student is not linked to this account")
)

// Payment ledger errors.
var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentForbidden     = errors.New("payment does not belong to this account")
	ErrPaymentStatusInvalid = errors.New("payment status does not allow this transition")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrReceiptConflict      = errors.New("receipt number conflict, retry the request")
	ErrPaymentUpdateFailed  = errors.New("payment update failed")
)

// SMS delivery errors.
var (
	ErrSMSDisabled    = errors.New("sms delivery is not configured")
	ErrUnknownCarrier = errors.New("unknown sms carrier")
	ErrPhoneMissing   = errors.New("no phone number on record")
)
