package apperrors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[Code]int{
	CodeInternal:           http.StatusInternalServerError,
	CodeValidation:         http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeForbidden:          http.StatusForbidden,
	CodeUnauthenticated:    http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeConflict:           http.StatusConflict,
	CodeSelfFollow:         http.StatusBadRequest,
}

// Respond writes the JSON error body for err. Unclassified errors are
// surfaced as a generic 500 so internals never leak to the caller.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": appErr.Message})
}
