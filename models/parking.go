// Package models defines data structures used across the application.
// File: models/parking.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// ----------------------- vehicle categories -----------------------

// VehicleType classifies a vehicle for sub-capacity enforcement.
type VehicleType string

const (
	Heavy  VehicleType = "heavy"
	Medium VehicleType = "medium"
	Light  VehicleType = "light"
)

// VehicleTypes lists every category in display order.
var VehicleTypes = []VehicleType{Heavy, Medium, Light}

// ParseVehicleType normalises s into a VehicleType. An empty string yields Light.
func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(strings.ToLower(strings.TrimSpace(s))) {
	case "", Light:
		return Light, nil
	case Medium:
		return Medium, nil
	case Heavy:
		return Heavy, nil
	}
	return "", fmt.Errorf("invalid vehicle type %q, please choose heavy, medium, or light", s)
}

// ----------------------- vehicle model -----------------------

// Vehicle is a parked vehicle. It is never modified after admission.
type Vehicle struct {
	Number    string      `json:"number"`
	EntryTime time.Time   `json:"entryTime"`
	ZoneID    string      `json:"zoneId"`
	TicketID  string      `json:"ticketId"`
	Type      VehicleType `json:"type"`
	Slot      string      `json:"slot,omitempty"`
}

// ----------------------- zone model -----------------------

// CategoryCounts holds one integer per vehicle category. It is used both for
// per-category limits and for per-category occupancy.
type CategoryCounts struct {
	Heavy  int `json:"heavy"`
	Medium int `json:"medium"`
	Light  int `json:"light"`
}

// Get returns the count for t.
func (c CategoryCounts) Get(t VehicleType) int {
	switch t {
	case Heavy:
		return c.Heavy
	case Medium:
		return c.Medium
	default:
		return c.Light
	}
}

// Add adjusts the count for t by delta.
func (c *CategoryCounts) Add(t VehicleType, delta int) {
	switch t {
	case Heavy:
		c.Heavy += delta
	case Medium:
		c.Medium += delta
	default:
		c.Light += delta
	}
}

// Total sums all categories.
func (c CategoryCounts) Total() int {
	return c.Heavy + c.Medium + c.Light
}

// SplitCapacity divides capacity 20/30/50 between heavy, medium and light.
func SplitCapacity(capacity int) CategoryCounts {
	heavy := capacity * 2 / 10
	medium := capacity * 3 / 10
	return CategoryCounts{Heavy: heavy, Medium: medium, Light: capacity - heavy - medium}
}

// ParkingZone is a named parking area with total and per-category capacity.
// Vehicles are ordered newest first.
type ParkingZone struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Capacity int            `json:"capacity"`
	Occupied int            `json:"occupied"`
	Vehicles []Vehicle      `json:"vehicles"`
	Limits   CategoryCounts `json:"limits"`
	Stats    CategoryCounts `json:"stats"`
}

// HasRoomFor reports whether the zone can admit one more vehicle of type t.
func (z *ParkingZone) HasRoomFor(t VehicleType) bool {
	return z.Occupied < z.Capacity && z.Stats.Get(t) < z.Limits.Get(t)
}

// Clone returns a deep copy that shares nothing with z.
func (z *ParkingZone) Clone() ParkingZone {
	out := *z
	out.Vehicles = make([]Vehicle, len(z.Vehicles))
	copy(out.Vehicles, z.Vehicles)
	return out
}

// ----------------------- ticket model -----------------------

// Ticket is the receipt handed out when a vehicle is admitted.
type Ticket struct {
	VehicleNumber string      `json:"vehicleNumber"`
	ZoneID        string      `json:"zoneId"`
	ZoneName      string      `json:"zoneName"`
	TicketID      string      `json:"ticketId"`
	Time          string      `json:"time"`
	IssuedAt      time.Time   `json:"issuedAt"`
	Type          VehicleType `json:"type"`
	Slot          string      `json:"slot,omitempty"`
}

// TicketTimeLayout renders Ticket.Time.
const TicketTimeLayout = "3:04:05 PM"

// NewTicket builds the receipt for v parked in zone.
func NewTicket(v Vehicle, zone *ParkingZone) Ticket {
	return Ticket{
		VehicleNumber: v.Number,
		ZoneID:        zone.ID,
		ZoneName:      zone.Name,
		TicketID:      v.TicketID,
		Time:          v.EntryTime.Format(TicketTimeLayout),
		IssuedAt:      v.EntryTime,
		Type:          v.Type,
		Slot:          v.Slot,
	}
}
