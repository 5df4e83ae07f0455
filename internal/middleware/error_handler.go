package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contains the error information
type ErrorDetails struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Common error codes
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeInternalServer    = "INTERNAL_SERVER_ERROR"
)

// ErrorHandler maps domain errors collected on the gin context onto a
// consistent response shape.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			handleError(c, c.Errors.Last().Err)
		}
	}
}

// handleError translates the domain error taxonomy into status codes.
func handleError(c *gin.Context, err error) {
	requestID := RequestIDFromContext(c)

	var statusCode int
	var code, message string

	switch {
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		code = ErrCodeNotFound
		message = err.Error()
	case errors.Is(err, models.ErrInvalidTransition):
		statusCode = http.StatusConflict
		code = ErrCodeInvalidTransition
		message = err.Error()
	case errors.Is(err, models.ErrDuplicateOpenTask):
		statusCode = http.StatusConflict
		code = ErrCodeConflict
		message = err.Error()
	case errors.Is(err, models.ErrValidation):
		statusCode = http.StatusBadRequest
		code = ErrCodeValidationFailed
		message = err.Error()
	default:
		statusCode = http.StatusInternalServerError
		code = ErrCodeInternalServer
		message = "An unexpected error occurred"
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetails{
			Code:      code,
			Message:   message,
			Timestamp: time.Now().UTC(),
			RequestID: requestID,
		},
	})
}
