package admin

import (
	"strconv"

	"github.com/astra-preschool/internal/constants"
	handlershared "github.com/astra-preschool/internal/http/handlers/shared"
	"github.com/astra-preschool/internal/http/response"
	"github.com/astra-preschool/internal/repository"
	"github.com/astra-preschool/internal/service"

	"github.com/gin-gonic/gin"
)

type createParentRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone" binding:"required"`
	Carrier  string `json:"carrier"`
	Password string `json:"password" binding:"required"`
}

// CreateParent registers a parent account.
func (h *Handler) CreateParent(c *gin.Context) {
	var req createParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	user, err := h.AuthService.RegisterParent(service.RegisterParentInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Carrier:  req.Carrier,
		Password: req.Password,
	})
	if err != nil {
		respondWithMappedError(c, err, parentAdminErrorRules, response.CodeInternal, "parent registration failed")
		return
	}
	response.Success(c, user)
}

// GetParent fetches one parent account with linked students.
func (h *Handler) GetParent(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid account id", nil)
		return
	}

	user, err := h.AuthService.GetUser(uint(userID))
	if err != nil {
		respondWithMappedError(c, err, parentAdminErrorRules, response.CodeInternal, "account fetch failed")
		return
	}

	students, err := h.StudentService.ListByParent(user.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "student list failed", err)
		return
	}
	user.Students = students
	response.Success(c, user)
}

// ListParents lists parent accounts.
func (h *Handler) ListParents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	users, total, err := h.AuthService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Role:     constants.RoleParent,
		Keyword:  c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "account list failed", err)
		return
	}

	response.SuccessWithPage(c, users, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
