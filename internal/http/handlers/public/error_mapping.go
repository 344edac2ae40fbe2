package public

import (
	"errors"

	handlershared "github.com/astra-preschool/internal/http/handlers/shared"
	"github.com/astra-preschool/internal/http/response"
	"github.com/astra-preschool/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// mappedHandlerError maps a business error onto an API error response.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: "invalid username or password"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, msg: "captcha verification failed"},
	{target: service.ErrTooManyAttempts, code: response.CodeTooManyRequests, msg: "too many attempts, try again later"},
}

var otpErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "no account for this phone number"},
	{target: service.ErrOtpInvalid, code: response.CodeBadRequest, msg: "invalid or expired verification code"},
	{target: service.ErrOtpSendUnavailable, code: response.CodeInternal, msg: "verification code delivery is unavailable"},
	{target: service.ErrTooManyAttempts, code: response.CodeTooManyRequests, msg: "too many attempts, try again later"},
}

var studentAccessErrorRules = []mappedHandlerError{
	{target: service.ErrStudentNotFound, code: response.CodeNotFound, msg: "student not found"},
	{target: service.ErrStudentForbidden, code: response.CodeForbidden, msg: "student is not linked to this account"},
}

var paymentInitiateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidAmount, code: response.CodeBadRequest, msg: "amount must be greater than zero"},
	{target: service.ErrStudentNotFound, code: response.CodeNotFound, msg: "student not found"},
	{target: service.ErrStudentForbidden, code: response.CodeForbidden, msg: "student is not linked to this account"},
	{target: service.ErrReceiptConflict, code: response.CodeConflict, msg: "receipt number conflict, retry the request"},
}

var paymentAccessErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "payment not found"},
	{target: service.ErrPaymentForbidden, code: response.CodeForbidden, msg: "payment does not belong to this account"},
	{target: service.ErrPaymentStatusInvalid, code: response.CodeBadRequest, msg: "payment status does not allow this transition"},
	{target: service.ErrPaymentUpdateFailed, code: response.CodeInternal, msg: "payment update failed"},
}

var passwordChangeErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "account not found"},
	{target: service.ErrInvalidCredentials, code: response.CodeBadRequest, msg: "current password is incorrect"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, msg: "password does not meet the policy"},
}
