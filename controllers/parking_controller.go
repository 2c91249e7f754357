// Package controllers provides HTTP handlers for the parking API.
// File: controllers/parking_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"nilakkal-parking/logger"
	"nilakkal-parking/models"
	"nilakkal-parking/services"
)

// ---------------- Parking Controller ----------------

// ParkingController serves zones, admissions and tickets.
type ParkingController struct {
	Parking        services.ParkingServiceInterface
	ApplicationURL string
	QREncoder      services.QRCodeEncoder
}

// NewParkingController initializes a new instance of ParkingController
func NewParkingController(parking services.ParkingServiceInterface, applicationURL string) *ParkingController {
	return &ParkingController{Parking: parking, ApplicationURL: applicationURL}
}

// ---------------- zones ----------------

// ListZones returns every zone with its vehicles.
func (pc *ParkingController) ListZones(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"zones": pc.Parking.Zones()})
}

// GetZone returns one zone.
func (pc *ParkingController) GetZone(c *gin.Context) {
	zone, err := pc.Parking.Zone(c.Param("id"))
	if err != nil {
		respondError(c, "GetZone", err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

// Summary returns facility-wide totals.
func (pc *ParkingController) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, pc.Parking.Summary())
}

// ---------------- vehicles ----------------

type enterRequest struct {
	Plate  string             `json:"plate" binding:"required"`
	Type   models.VehicleType `json:"type"`
	ZoneID string             `json:"zoneId"`
	Slot   string             `json:"slot"`
}

// EnterVehicle admits a vehicle and returns its ticket.
func (pc *ParkingController) EnterVehicle(c *gin.Context) {
	var req enterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vehicle number is required"})
		return
	}

	res := pc.Parking.EnterVehicle(req.Plate, req.Type, req.ZoneID, req.Slot)
	if res.Success {
		c.JSON(http.StatusCreated, res)
		return
	}

	status := http.StatusConflict
	switch res.Reason {
	case services.FailureInvalid:
		status = http.StatusBadRequest
	case services.FailureZoneNotFound:
		status = http.StatusNotFound
	}
	c.JSON(status, res)
}

type exitRequest struct {
	TicketID string `json:"ticketId" binding:"required"`
}

// ExitVehicle releases the vehicle holding a ticket.
func (pc *ParkingController) ExitVehicle(c *gin.Context) {
	var req exitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticket id is required"})
		return
	}
	rec, err := pc.Parking.ExitVehicle(req.TicketID)
	if err != nil {
		respondError(c, "ExitVehicle", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "record": rec})
}

// SearchVehicles finds parked vehicles by plate.
func (pc *ParkingController) SearchVehicles(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}
	matches := pc.Parking.SearchVehicles(q)
	if matches == nil {
		matches = []services.VehicleMatch{}
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "results": matches})
}

// ---------------- tickets ----------------

// GetTicket verifies a ticket by id.
func (pc *ParkingController) GetTicket(c *gin.Context) {
	ticket, err := pc.Parking.FindTicket(c.Param("ticketId"))
	if err != nil {
		respondError(c, "GetTicket", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "ticket": ticket})
}

// TicketQRCode returns a PNG QR code linking to the ticket.
func (pc *ParkingController) TicketQRCode(c *gin.Context) {
	ticketID := c.Param("ticketId")
	if _, err := pc.Parking.FindTicket(ticketID); err != nil {
		respondError(c, "TicketQRCode", err)
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "256"))
	if err != nil || size > 1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
		return
	}
	png, err := services.GenerateTicketQRCode(pc.ApplicationURL, ticketID, size, pc.QREncoder)
	if err != nil {
		logger.Warn.Printf("[TicketQRCode] Failed to generate QR code for %s: %v", ticketID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
