// File: controllers/errors.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"nilakkal-parking/logger"
	"nilakkal-parking/services"
	"nilakkal-parking/storage"
)

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, op string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason, "records": verr.Records})
	case errors.Is(err, services.ErrZoneNotFound),
		errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, storage.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidZone):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error.Printf("[%s] %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
