package admin

import (
	"strconv"
	"time"

	handlershared "github.com/astra-preschool/internal/http/handlers/shared"
	"github.com/astra-preschool/internal/http/response"
	"github.com/astra-preschool/internal/repository"
	"github.com/astra-preschool/internal/service"

	"github.com/gin-gonic/gin"
)

// ListPayments lists ledger entries with filters, newest first.
func (h *Handler) ListPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.PaymentListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Method:   c.Query("method"),
	}
	if raw := c.Query("student_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid student id", nil)
			return
		}
		filter.StudentID = uint(parsed)
	}
	if raw := c.Query("parent_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid parent id", nil)
			return
		}
		filter.ParentID = uint(parsed)
	}
	if raw := c.Query("created_from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid created_from date", nil)
			return
		}
		filter.CreatedFrom = &from
	}
	if raw := c.Query("created_to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid created_to date", nil)
			return
		}
		end := to.AddDate(0, 0, 1)
		filter.CreatedTo = &end
	}

	payments, total, err := h.PaymentRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "payment list failed", err)
		return
	}

	response.SuccessWithPage(c, payments, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetPayment fetches one ledger entry.
func (h *Handler) GetPayment(c *gin.Context) {
	actor, ok := getAdminActor(c)
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
		respondWithMappedError(c, err, paymentAdminErrorRules, response.CodeInternal, "payment fetch failed")
		return
	}
	response.Success(c, payment)
}

type verifyPaymentRequest struct {
	Verified *bool  `json:"verified" binding:"required"`
	Notes    string `json:"notes"`
}

// VerifyPayment records the admin audit decision for a ledger entry.
func (h *Handler) VerifyPayment(c *gin.Context) {
	actor, ok := getAdminActor(c)
	if !ok {
		return
	}
	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid payment id", nil)
		return
	}
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	payment, err := h.PaymentService.Verify(actor, service.VerifyPaymentInput{
		PaymentID: uint(paymentID),
		Verified:  *req.Verified,
		Notes:     req.Notes,
	})
	if err != nil {
		respondWithMappedError(c, err, paymentAdminErrorRules, response.CodeInternal, "payment verification failed")
		return
	}
	response.Success(c, payment)
}

// PaymentStats aggregates the ledger for the dashboard.
func (h *Handler) PaymentStats(c *gin.Context) {
	actor, ok := getAdminActor(c)
	if !ok {
		return
	}

	stats, err := h.PaymentService.Stats(actor)
	if err != nil {
		respondWithMappedError(c, err, paymentAdminErrorRules, response.CodeInternal, "payment stats failed")
		return
	}
	response.Success(c, stats)
}

type reconcileRequest struct {
	StudentID uint `json:"student_id"`
}

// ReconcileLedger sweeps student fee caches against the ledger.
func (h *Handler) ReconcileLedger(c *gin.Context) {
	actor, ok := getAdminActor(c)
	if !ok {
		return
	}

	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	report, err := h.PaymentService.ReconcileForActor(actor, req.StudentID)
	if err != nil {
		respondWithMappedError(c, err, paymentAdminErrorRules, response.CodeInternal, "ledger reconcile failed")
		return
	}

	requestLog(c).Infow("ledger_reconcile_requested",
		"student_id", req.StudentID,
		"checked", report.Checked,
		"drifted", len(report.Drifted),
	)
	response.Success(c, report)
}
