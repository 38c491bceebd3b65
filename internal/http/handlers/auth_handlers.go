package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

const resetRequestedMessage = "If an account matches, a reset code has been sent."

// AuthHandlers handles the public account endpoints
type AuthHandlers struct {
	authSvc domain.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Mobile   string `json:"mobile" binding:"required,len=10,number"`
	Password string `json:"password" binding:"required,min=8"`
}

// VerifyOTPRequest represents OTP verification request
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// ResendOTPRequest represents a request for a fresh verification code
type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest represents login request. Identifier may be an email or a
// mobile number; email is accepted for older clients.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required_without=Email"`
	Email      string `json:"email"`
	Password   string `json:"password" binding:"required"`
}

// ResetRequest starts a password reset. Email may hold a mobile number.
type ResetRequest struct {
	Email      string `json:"email" binding:"required_without=Identifier"`
	Identifier string `json:"identifier"`
}

// ConfirmResetRequest completes a password reset
type ConfirmResetRequest struct {
	Email       string `json:"email" binding:"required_without=Identifier"`
	Identifier  string `json:"identifier"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Register handles POST /auth/register-request
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req.Name, req.Email, req.Mobile, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	respondOK(c, gin.H{
		"message": "OTP sent to your email. Please verify to complete registration.",
		"email":   user.Email,
	})
}

// VerifyOTP handles POST /auth/verify-otp
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.authSvc.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		fail(c, err)
		return
	}

	respondOK(c, gin.H{
		"message":    "Account verified successfully",
		"token":      result.Token,
		"token_type": "Bearer",
		"expires_in": result.ExpiresIn,
		"user":       userView(result.User),
	})
}

// ResendOTP handles POST /auth/resend-otp
func (h *AuthHandlers) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if !bind(c, &req) {
		return
	}

	if err := h.authSvc.ResendOTP(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"message": "A new OTP has been sent to your email"})
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), firstNonEmpty(req.Identifier, req.Email), req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	respondOK(c, gin.H{
		"token":      result.Token,
		"token_type": "Bearer",
		"expires_in": result.ExpiresIn,
		"user":       userView(result.User),
	})
}

// RequestReset handles POST /auth/request-reset. The response is the same
// whether or not the account exists.
func (h *AuthHandlers) RequestReset(c *gin.Context) {
	var req ResetRequest
	if !bind(c, &req) {
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), firstNonEmpty(req.Identifier, req.Email)); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"message": resetRequestedMessage})
}

// ConfirmReset handles POST /auth/confirm-reset
func (h *AuthHandlers) ConfirmReset(c *gin.Context) {
	var req ConfirmResetRequest
	if !bind(c, &req) {
		return
	}

	identifier := firstNonEmpty(req.Identifier, req.Email)
	if err := h.authSvc.ConfirmPasswordReset(c.Request.Context(), identifier, req.OTP, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Password has been reset. You can now log in."})
}
