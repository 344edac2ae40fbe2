package admin

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

var studentAdminErrorRules = []mappedHandlerError{
	{target: service.ErrStudentNotFound, code: response.CodeNotFound, msg: "student not found"},
	{target: service.ErrInvalidClass, code: response.CodeBadRequest, msg: "unknown class name"},
	{target: service.ErrStudentCodeTaken, code: response.CodeConflict, msg: "student code is already in use"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "parent account not found"},
}

var parentAdminErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "account not found"},
	{target: service.ErrUsernameTaken, code: response.CodeConflict, msg: "username is already registered"},
	{target: service.ErrPhoneTaken, code: response.CodeConflict, msg: "phone number is already registered"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, msg: "password does not meet the policy"},
	{target: service.ErrInvalidCredentials, code: response.CodeBadRequest, msg: "username or phone is required"},
}

var paymentAdminErrorRules = []mappedHandlerError{
	{target: service.ErrAdminOnly, code: response.CodeForbidden, msg: "administrator access required"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "payment not found"},
	{target: service.ErrPaymentStatusInvalid, code: response.CodeBadRequest, msg: "payment status does not allow this transition"},
	{target: service.ErrPaymentUpdateFailed, code: response.CodeInternal, msg: "payment update failed"},
	{target: service.ErrStudentNotFound, code: response.CodeNotFound, msg: "student not found"},
}

var reminderErrorRules = []mappedHandlerError{
	{target: service.ErrAdminOnly, code: response.CodeForbidden, msg: "administrator access required"},
	{target: service.ErrStudentNotFound, code: response.CodeNotFound, msg: "student not found"},
	{target: service.ErrSMSDisabled, code: response.CodeInternal, msg: "sms delivery is not configured"},
	{target: service.ErrUnknownCarrier, code: response.CodeBadRequest, msg: "unknown sms carrier"},
	{target: service.ErrPhoneMissing, code: response.CodeBadRequest, msg: "no phone number on record"},
}
