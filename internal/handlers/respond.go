package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/services"
)

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrConfiguration):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prize catalog is misconfigured", "detail": err.Error()})
	default:
		// Upstream failures and anything unexpected stay generic; details are in the logs
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Service temporarily unavailable"})
	}
}
