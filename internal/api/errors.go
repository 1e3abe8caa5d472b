package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "error" field of failure bodies.
const (
	CodeValidation = "validation_error"
	CodeUpstream   = "upstream_error"
	CodeNotFound   = "not_found"
	CodeInternal   = "internal_error"
)

const msgInternal = "Internal server error"

// Error is a request failure with the HTTP status it maps to.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func validationError(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: message}
}

func upstreamError(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeUpstream, Message: message}
}

func notFoundError(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func internalError(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: message}
}

// respondError aborts the request with the JSON body for err. Errors that
// are not *Error are reported as internal errors without their text.
func respondError(c *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = internalError(msgInternal)
	}

	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"success": false,
		"error":   apiErr.Code,
		"detail":  apiErr.Message,
	})
}
