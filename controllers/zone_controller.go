// File: controllers/zone_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"nilakkal-parking/models"
	"nilakkal-parking/services"
)

// ---------------- Zone Controller ----------------

// ZoneController provides admin zone management.
type ZoneController struct {
	Parking services.ParkingServiceInterface
}

// NewZoneController initializes a new instance of ZoneController
func NewZoneController(parking services.ParkingServiceInterface) *ZoneController {
	return &ZoneController{Parking: parking}
}

type createZoneRequest struct {
	Name     string                 `json:"name" binding:"required"`
	Capacity *int                   `json:"capacity" binding:"required"`
	Limits   *models.CategoryCounts `json:"limits"`
}

// CreateZone adds a zone. Missing limits are split 20/30/50 from capacity.
func (zc *ZoneController) CreateZone(c *gin.Context) {
	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Zone name and capacity are required"})
		return
	}
	limits := models.SplitCapacity(*req.Capacity)
	if req.Limits != nil {
		limits = *req.Limits
	}
	zone, err := zc.Parking.AddZone(req.Name, *req.Capacity, limits)
	if err != nil {
		respondError(c, "CreateZone", err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

// UpdateZone merges the supplied fields into a zone.
func (zc *ZoneController) UpdateZone(c *gin.Context) {
	var update services.ZoneUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zone update"})
		return
	}
	zone, err := zc.Parking.UpdateZone(c.Param("id"), update)
	if err != nil {
		respondError(c, "UpdateZone", err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

// DeleteZone removes a zone and its vehicles.
func (zc *ZoneController) DeleteZone(c *gin.Context) {
	id := c.Param("id")
	if !zc.Parking.DeleteZone(id) {
		respondError(c, "DeleteZone", services.ErrZoneNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}
