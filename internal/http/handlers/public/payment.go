package public

import (
	"strconv"

	handlershared "github.com/astra-preschool/internal/http/handlers/shared"
	"github.com/astra-preschool/internal/http/response"
	"github.com/astra-preschool/internal/repository"
	"github.com/astra-preschool/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type initiatePaymentRequest struct {
	StudentID uint            `json:"student_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Purpose   string          `json:"purpose"`
	Notes     string          `json:"notes"`
}

// InitiatePayment opens a pending ledger entry and returns the UPI deep link
// and QR code.
func (h *Handler) InitiatePayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	result, err := h.PaymentService.Initiate(actor, service.InitiatePaymentInput{
		StudentID: req.StudentID,
		Amount:    req.Amount,
		Purpose:   req.Purpose,
		Notes:     req.Notes,
	})
	if err != nil {
		respondWithMappedError(c, err, paymentInitiateErrorRules, response.CodeInternal, "payment initiation failed")
		return
	}
	response.Success(c, result)
}

type confirmPaymentRequest struct {
	UPITransactionID string `json:"upi_transaction_id"`
}

// ConfirmPayment records the parent's "I have paid" signal.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid payment id", nil)
		return
	}
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	payment, err := h.PaymentService.Confirm(actor, service.ConfirmPaymentInput{
		PaymentID:        uint(paymentID),
		UPITransactionID: req.UPITransactionID,
	})
	if err != nil {
		respondWithMappedError(c, err, paymentAccessErrorRules, response.CodeInternal, "payment confirmation failed")
		return
	}
	response.Success(c, payment)
}

// CancelPayment abandons a pending payment.
func (h *Handler) CancelPayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid payment id", nil)
		return
	}

	payment, err := h.PaymentService.Cancel(actor, uint(paymentID))
	if err != nil {
		respondWithMappedError(c, err, paymentAccessErrorRules, response.CodeInternal, "payment cancellation failed")
		return
	}
	response.Success(c, payment)
}

// GetPayment fetches one of the parent's ledger entries.
func (h *Handler) GetPayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid payment id", nil)
		return
	}

	payment, err := h.PaymentService.Get(actor, uint(paymentID))
	if err != nil {
		respondWithMappedError(c, err, paymentAccessErrorRules, response.CodeInternal, "payment fetch failed")
		return
	}
	response.Success(c, payment)
}

// ListPayments lists the parent's ledger entries newest first.
func (h *Handler) ListPayments(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	var studentID uint
	if raw := c.Query("student_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid student id", nil)
			return
		}
		studentID = uint(parsed)
	}

	payments, total, err := h.PaymentService.History(actor, repository.PaymentListFilter{
		Page:      page,
		PageSize:  pageSize,
		StudentID: studentID,
		Status:    c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "payment history failed", err)
		return
	}

	response.SuccessWithPage(c, payments, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
