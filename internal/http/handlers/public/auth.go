package public

import (
	"github.com/astra-preschool/internal/http/response"
	"github.com/astra-preschool/internal/models"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login authenticates by username, email or phone plus password.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
		respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "login failed")
		return
	}

	user, token, expiresAt, err := h.AuthService.Login(req.Identifier, req.Password)
	if err != nil {
		respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "login failed")
		return
	}

	response.Success(c, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      user,
	})
}

// Captcha serves an image challenge for the login page.
func (h *Handler) Captcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "captcha generation failed", err)
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}

type otpSendRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// SendOtp delivers a one-time login code to a parent's phone.
func (h *Handler) SendOtp(c *gin.Context) {
	var req otpSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.OtpService.Send(c.Request.Context(), req.Phone); err != nil {
		respondWithMappedError(c, err, otpErrorRules, response.CodeInternal, "code delivery failed")
		return
	}
	response.SuccessWithMsg(c, "code sent", nil)
}

type otpVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// VerifyOtp redeems a one-time code and opens a session.
func (h *Handler) VerifyOtp(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	user, err := h.OtpService.Verify(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		respondWithMappedError(c, err, otpErrorRules, response.CodeInternal, "code verification failed")
		return
	}

	user, token, expiresAt, err := h.AuthService.LoginUser(user)
	if err != nil {
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}

	response.Success(c, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      user,
	})
}

// Profile returns the authenticated account.
func (h *Handler) Profile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetUser(userID)
	if err != nil {
		respondWithMappedError(c, err, passwordChangeErrorRules, response.CodeInternal, "profile fetch failed")
		return
	}
	response.Success(c, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword rotates the authenticated account's password.
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.AuthService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		respondWithMappedError(c, err, passwordChangeErrorRules, response.CodeInternal, "password change failed")
		return
	}
	response.SuccessWithMsg(c, "password changed", nil)
}
