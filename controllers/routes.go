// File: controllers/routes.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"nilakkal-parking/middleware"
	"nilakkal-parking/websocket"
)

// Handlers bundles everything RegisterRoutes wires.
type Handlers struct {
	Parking      *ParkingController
	Zones        *ZoneController
	Auth         *AuthController
	Backups      *BackupController
	Hub          *websocket.Hub
	LoginLimiter *middleware.RateLimiter
}

// RegisterRoutes attaches the public and admin API to router. Session
// middleware must already be installed.
func RegisterRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", Health)
	if h.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			h.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	api := router.Group("/api")

	// Public routes
	api.GET("/zones", h.Parking.ListZones)
	api.GET("/zones/:id", h.Parking.GetZone)
	api.GET("/summary", h.Parking.Summary)
	api.POST("/vehicles/enter", h.Parking.EnterVehicle)
	api.GET("/tickets/:ticketId", h.Parking.GetTicket)
	api.GET("/tickets/:ticketId/qrcode", h.Parking.TicketQRCode)

	auth := api.Group("/auth")
	{
		if h.LoginLimiter != nil {
			auth.POST("/login", h.LoginLimiter.Middleware(), h.Auth.Login)
		} else {
			auth.POST("/login", h.Auth.Login)
		}
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/register", h.Auth.Register)
		auth.GET("/session", h.Auth.Session)
	}

	// Admin routes
	admin := api.Group("/", middleware.AdminRequired())
	{
		admin.GET("/vehicles/search", h.Parking.SearchVehicles)
		admin.POST("/vehicles/exit", h.Parking.ExitVehicle)

		admin.POST("/zones", h.Zones.CreateZone)
		admin.PATCH("/zones/:id", h.Zones.UpdateZone)
		admin.DELETE("/zones/:id", h.Zones.DeleteZone)

		admin.GET("/backups", h.Backups.ListSnapshots)
		admin.POST("/backups", h.Backups.CreateSnapshot)
		admin.POST("/backups/import", h.Backups.ImportSnapshot)
		admin.DELETE("/backups/:id", h.Backups.DeleteSnapshot)
		admin.POST("/backups/:id/restore", h.Backups.RestoreSnapshot)
		admin.GET("/backups/:id/export", h.Backups.ExportSnapshot)
	}
}
