package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/gin-gonic/gin"
)

var badRequestErrors = []error{
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrResourceTitleEmpty,
	domain.ErrResourceTitleTooLong,
	domain.ErrResourceInvalidUserID,
	domain.ErrInvalidResourceType,
	domain.ErrInvalidResourceStatus,
	domain.ErrInvalidResourceURL,
	domain.ErrResourceNotesTooLong,
	domain.ErrTooManyResourceTags,
	domain.ErrInvalidMinutes,
	domain.ErrNegativeMinutes,
	domain.ErrInvalidSessionDate,
	domain.ErrSessionInFuture,
	domain.ErrSessionUserIDMiss,
	domain.ErrInvalidThreshold,
	domain.ErrInvalidDateRange,
	domain.ErrGoalTitleEmpty,
	domain.ErrGoalTitleTooLong,
	domain.ErrGoalInvalidUserID,
	domain.ErrInvalidGoalType,
	domain.ErrInvalidGoalPeriod,
	domain.ErrInvalidGoalStatus,
	domain.ErrInvalidGoalTarget,
	domain.ErrInvalidGoalDates,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleError maps domain sentinels to status codes. Anything unknown is logged and hidden.
func handleError(c *gin.Context, err error) {
	switch {
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, domain.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, domain.ErrGoalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "goal not found"})
	case errors.Is(err, domain.ErrResourceConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version conflict",
			"message": "Data has been modified elsewhere. Please reload.",
		})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
	case errors.Is(err, domain.ErrGoalStatusTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.FullPath(), err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
