package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes returned by the service layer. The handler layer maps each code
// to an HTTP status; services never deal in HTTP statuses directly.
const (
	CodeNotFound        = "notFound"
	CodeUnavailable     = "unavailable"
	CodeOutOfWindow     = "outOfWindow"
	CodeConflict        = "conflict"
	CodeForbidden       = "forbidden"
	CodeInvalidArgument = "invalidArgument"
	CodeUnauthenticated = "unauthenticated"
)

// ServiceError is a typed failure carrying a stable code and a message safe to
// show to callers.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

func NotFoundError(message string) error        { return NewServiceError(CodeNotFound, message) }
func UnavailableError(message string) error     { return NewServiceError(CodeUnavailable, message) }
func OutOfWindowError(message string) error     { return NewServiceError(CodeOutOfWindow, message) }
func ConflictError(message string) error        { return NewServiceError(CodeConflict, message) }
func ForbiddenError(message string) error       { return NewServiceError(CodeForbidden, message) }
func InvalidArgumentError(message string) error { return NewServiceError(CodeInvalidArgument, message) }
func UnauthenticatedError(message string) error { return NewServiceError(CodeUnauthenticated, message) }

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// statusFor maps a service error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnavailable, CodeOutOfWindow, CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes a JSON error response for a service-layer failure.
// Unclassified errors are logged for operators and surfaced as a generic 500
// so internal detail never leaks to the caller.
func RespondError(c *gin.Context, err error) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		c.JSON(statusFor(svcErr.Code), ErrorResponse{Message: svcErr.Message})
		return
	}
	GetLogger().Error("Unhandled service error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}
