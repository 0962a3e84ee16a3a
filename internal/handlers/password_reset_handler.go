package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artemis/internal/models"
	"artemis/internal/services"
)

const msgResetRequested = "If the email is registered, a recovery code has been sent"

type PasswordResetHandler struct {
	svc services.PasswordResetService
	log *zap.Logger
}

func NewPasswordResetHandler(svc services.PasswordResetService, log *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc, log: log}
}

// ForgotPassword godoc
// @Summary      Request a password reset code
// @Description  Emails a 6-digit code valid for 10 minutes. The answer is the same whether or not the email is registered.
// @Tags         Password reset
// @Accept       json
// @Produce      json
// @Param        body  body      models.ForgotPasswordRequest  true  "Account email"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *PasswordResetHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if err := h.svc.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgResetRequested})
}

// VerifyResetCode godoc
// @Summary      Check a reset code without using it
// @Tags         Password reset
// @Accept       json
// @Produce      json
// @Param        body  body      models.VerifyResetCodeRequest  true  "Email and code"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/verify-reset-code [post]
func (h *PasswordResetHandler) VerifyResetCode(c *gin.Context) {
	var req models.VerifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if err := h.svc.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "code is valid", "valid": true})
}

// ResetPassword godoc
// @Summary      Set a new password with a valid reset code
// @Tags         Password reset
// @Accept       json
// @Produce      json
// @Param        body  body      models.ResetPasswordRequest  true  "Email, code and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated successfully"})
}
