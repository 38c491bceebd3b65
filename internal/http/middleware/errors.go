package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

const serverErrorMessage = "Server error"

type errorMapping struct {
	target  error
	status  int
	message string // empty means err.Error()
}

// errorMappings is checked in order with errors.Is
var errorMappings = []errorMapping{
	{domain.ErrValidation, http.StatusBadRequest, ""},
	{domain.ErrOTPInvalid, http.StatusBadRequest, "Invalid OTP"},
	{domain.ErrOTPExpired, http.StatusBadRequest, "OTP has expired, please request a new one"},
	{domain.ErrOTPNotPending, http.StatusBadRequest, "No pending verification for this account"},
	{domain.ErrAlreadyVerified, http.StatusBadRequest, "Account is already verified"},

	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{domain.ErrTokenExpired, http.StatusUnauthorized, "Token expired"},
	{domain.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token"},
	{domain.ErrTokenMalformed, http.StatusUnauthorized, "Invalid token"},

	{domain.ErrAccountNotVerified, http.StatusForbidden, "Please verify your account before logging in"},
	{domain.ErrForbidden, http.StatusForbidden, "Access Denied"},
	{domain.ErrPermissionDenied, http.StatusForbidden, "You do not have permission to perform this action"},

	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domain.ErrResourceNotFound, http.StatusNotFound, "Not found"},
	{domain.ErrCategoryNotFound, http.StatusNotFound, "Category not found"},

	{domain.ErrUserAlreadyExists, http.StatusConflict, "User already exists"},
	{domain.ErrMobileAlreadyInUse, http.StatusConflict, "Mobile number already in use"},
	{domain.ErrCategoryExists, http.StatusConflict, "Category already exists"},

	{domain.ErrOTPMaxAttempts, http.StatusTooManyRequests, "Too many failed attempts, please request a new OTP"},
	{domain.ErrOTPResendLimit, http.StatusTooManyRequests, ""},
	{domain.ErrRateLimited, http.StatusTooManyRequests, RateLimitMessage},
}

// StatusFor maps a service error to its HTTP status and client message.
// Unclassified errors become a generic 500.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.message == "" {
				return m.status, err.Error()
			}
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, serverErrorMessage
}

// ErrorHandler renders the last error a handler attached with c.Error as
// the JSON error envelope
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message := StatusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("error: %s %s request_id=%s: %v", c.Request.Method, c.Request.URL.Path, c.GetString(ContextRequestID), err)
		}
		c.JSON(status, gin.H{"error": message})
	}
}
