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

type createAdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Carrier  string `json:"carrier"`
	Password string `json:"password" binding:"required"`
}

// CreateAdmin registers another administrator account.
func (h *Handler) CreateAdmin(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}

	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	user, err := h.AuthService.RegisterAdmin(service.RegisterAdminInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Carrier:  req.Carrier,
		Password: req.Password,
	})
	if err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, response.CodeInternal, "admin registration failed")
		return
	}

	requestLog(c).Infow("admin_account_registered",
		"operator_id", operatorID,
		"target_user_id", user.ID,
	)
	response.Success(c, user)
}

// ListAdmins lists administrator accounts.
func (h *Handler) ListAdmins(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	users, total, err := h.AuthService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Role:     constants.RoleAdmin,
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

var adminAccountErrorRules = []mappedHandlerError{
	{target: service.ErrUsernameTaken, code: response.CodeConflict, msg: "username is already registered"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, msg: "password does not meet the policy"},
	{target: service.ErrInvalidCredentials, code: response.CodeBadRequest, msg: "username is required"},
}
