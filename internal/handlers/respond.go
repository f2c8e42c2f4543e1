package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Stable failure kinds carried next to the human-readable message in
// every error response body.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeAlreadyDecided    = "ALREADY_DECIDED"
	CodeAlreadyCancelled  = "ALREADY_CANCELLED"
	CodeAlreadyRejected   = "ALREADY_REJECTED"
	CodeDuplicateBooking  = "DUPLICATE_BOOKING"
	CodeDuplicateResource = "DUPLICATE_RESOURCE"
	CodeNoCapacity        = "NO_CAPACITY"
	CodeSelfBooking       = "SELF_BOOKING"
	CodeSelfReview        = "SELF_REVIEW"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInternal          = "INTERNAL"
)

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

// failInternal logs the underlying store error and returns a generic
// message so internal detail never reaches the caller.
func failInternal(c *gin.Context, err error, message string) {
	logrus.WithError(err).WithField("path", c.FullPath()).Error(message)
	c.JSON(500, gin.H{"error": message, "code": CodeInternal})
}
