package public

import (
	"strconv"

	handlershared "github.com/astra-preschool/internal/http/handlers/shared"
	"github.com/astra-preschool/internal/http/response"
	"github.com/astra-preschool/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListStudents lists the authenticated parent's children.
func (h *Handler) ListStudents(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	students, total, err := h.StudentService.List(actor, repository.StudentListFilter{
		Page:     page,
		PageSize: pageSize,
		Class:    c.Query("class"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "student list failed", err)
		return
	}

	response.SuccessWithPage(c, students, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetStudent fetches one of the parent's children.
func (h *Handler) GetStudent(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid student id", nil)
		return
	}

	student, err := h.StudentService.GetForActor(actor, uint(studentID))
	if err != nil {
		respondWithMappedError(c, err, studentAccessErrorRules, response.CodeInternal, "student fetch failed")
		return
	}
	response.Success(c, student)
}

// StudentPayments lists one child's ledger entries.
func (h *Handler) StudentPayments(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid student id", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	payments, total, err := h.PaymentService.HistoryForStudent(actor, uint(studentID), page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, studentAccessErrorRules, response.CodeInternal, "payment history failed")
		return
	}

	response.SuccessWithPage(c, payments, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
