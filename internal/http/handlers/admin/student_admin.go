package admin

import (
	"strconv"
	"time"

	handlershared "github.com/astra-preschool/internal/http/handlers/shared"
	"github.com/astra-preschool/internal/http/response"
	"github.com/astra-preschool/internal/repository"
	"github.com/astra-preschool/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createStudentRequest struct {
	Name        string          `json:"name" binding:"required"`
	Class       string          `json:"class" binding:"required"`
	ParentID    *uint           `json:"parent_id"`
	ParentName  string          `json:"parent_name" binding:"required"`
	ParentPhone string          `json:"parent_phone" binding:"required"`
	Address     string          `json:"address"`
	DateOfBirth string          `json:"date_of_birth" binding:"required"` // YYYY-MM-DD
	BloodGroup  string          `json:"blood_group"`
	Allergies   string          `json:"allergies"`
	PhotoURL    string          `json:"photo_url"`
	Balance     decimal.Decimal `json:"balance"`
}

// CreateStudent enrolls a student.
func (h *Handler) CreateStudent(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid date of birth", nil)
		return
	}

	student, err := h.StudentService.Create(service.CreateStudentInput{
		Name:        req.Name,
		Class:       req.Class,
		ParentID:    req.ParentID,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
		Address:     req.Address,
		DateOfBirth: dob,
		BloodGroup:  req.BloodGroup,
		Allergies:   req.Allergies,
		PhotoURL:    req.PhotoURL,
		Balance:     req.Balance,
		CreatedBy:   adminID,
	})
	if err != nil {
		respondWithMappedError(c, err, studentAdminErrorRules, response.CodeInternal, "student enrollment failed")
		return
	}
	response.Success(c, student)
}

type updateStudentRequest struct {
	Name        *string `json:"name"`
	Class       *string `json:"class"`
	ParentID    *uint   `json:"parent_id"`
	ParentName  *string `json:"parent_name"`
	ParentPhone *string `json:"parent_phone"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"date_of_birth"`
	BloodGroup  *string `json:"blood_group"`
	Allergies   *string `json:"allergies"`
	PhotoURL    *string `json:"photo_url"`
}

// UpdateStudent edits an enrollment record.
func (h *Handler) UpdateStudent(c *gin.Context) {
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid student id", nil)
		return
	}
	var req updateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	input := service.UpdateStudentInput{
		Name:        req.Name,
		Class:       req.Class,
		ParentID:    req.ParentID,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
		Address:     req.Address,
		BloodGroup:  req.BloodGroup,
		Allergies:   req.Allergies,
		PhotoURL:    req.PhotoURL,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid date of birth", nil)
			return
		}
		input.DateOfBirth = &dob
	}

	student, err := h.StudentService.Update(uint(studentID), input)
	if err != nil {
		respondWithMappedError(c, err, studentAdminErrorRules, response.CodeInternal, "student update failed")
		return
	}
	response.Success(c, student)
}

// DeleteStudent removes an enrollment record.
func (h *Handler) DeleteStudent(c *gin.Context) {
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid student id", nil)
		return
	}
	if err := h.StudentService.Delete(uint(studentID)); err != nil {
		respondWithMappedError(c, err, studentAdminErrorRules, response.CodeInternal, "student removal failed")
		return
	}
	response.SuccessWithMsg(c, "student removed", nil)
}

// GetStudent fetches one enrollment record.
func (h *Handler) GetStudent(c *gin.Context) {
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid student id", nil)
		return
	}
	student, err := h.StudentService.Get(uint(studentID))
	if err != nil {
		respondWithMappedError(c, err, studentAdminErrorRules, response.CodeInternal, "student fetch failed")
		return
	}
	response.Success(c, student)
}

// ListStudents lists enrollment records with filters.
func (h *Handler) ListStudents(c *gin.Context) {
	actor, ok := getAdminActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	var parentID uint
	if raw := c.Query("parent_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid parent id", nil)
			return
		}
		parentID = uint(parsed)
	}

	students, total, err := h.StudentService.List(actor, repository.StudentListFilter{
		Page:     page,
		PageSize: pageSize,
		Class:    c.Query("class"),
		Search:   c.Query("search"),
		ParentID: parentID,
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

type remindRequest struct {
	Message string `json:"message"`
}

// RemindStudent queues a fee-reminder SMS for a student's parent.
func (h *Handler) RemindStudent(c *gin.Context) {
	actor, ok := getAdminActor(c)
	if !ok {
		return
	}

	studentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid student id", nil)
		return
	}
	var req remindRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.PaymentService.SendReminder(actor, uint(studentID), req.Message); err != nil {
		respondWithMappedError(c, err, reminderErrorRules, response.CodeInternal, "reminder delivery failed")
		return
	}
	response.SuccessWithMsg(c, "reminder queued", nil)
}
