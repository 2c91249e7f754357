// Package services holds the parking domain logic.
// File: services/parking_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"nilakkal-parking/logger"
	"nilakkal-parking/models"
)

var (
	// ErrZoneNotFound is returned for an unknown zone id.
	ErrZoneNotFound = errors.New("zone not found")
	// ErrTicketNotFound is returned when no parked vehicle holds the ticket.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrInvalidZone is returned for negative capacities or limits, or an empty name.
	ErrInvalidZone = errors.New("invalid zone")
)

// ZonesTopic is the broadcast topic for zone changes.
const ZonesTopic = "zones"

// Allow tests to pin the clock and ticket ids.
var (
	timeNow     = time.Now
	newTicketID = func() string { return "TKT-" + ulid.Make().String() }
)

// EventRecorder receives audit events. Failures never affect the caller.
type EventRecorder interface {
	AppendEvent(ctx context.Context, ev models.AuditEvent) error
}

// Broadcaster pushes messages to live dashboards.
type Broadcaster interface {
	BroadcastMessage(topic string, msg map[string]interface{})
}

// ParkingServiceInterface is the zone/vehicle state store used by controllers.
type ParkingServiceInterface interface {
	Zones() []models.ParkingZone
	Zone(id string) (models.ParkingZone, error)
	Summary() Summary
	EnterVehicle(plate string, vType models.VehicleType, zoneID, slot string) EntryResult
	ExitVehicle(ticketID string) (models.VehicleRecord, error)
	FindTicket(ticketID string) (models.Ticket, error)
	SearchVehicles(query string) []VehicleMatch
	AddZone(name string, capacity int, limits models.CategoryCounts) (models.ParkingZone, error)
	UpdateZone(id string, update ZoneUpdate) (models.ParkingZone, error)
	DeleteZone(id string) bool
	RestoreData(records []models.VehicleRecord) RestoreResult
	Records() []models.VehicleRecord
}

// ------------------------ result types ------------------------

// EntryFailure classifies a rejected admission.
type EntryFailure string

const (
	FailureInvalid      EntryFailure = "invalid"
	FailureZoneNotFound EntryFailure = "zone_not_found"
	FailureZoneFull     EntryFailure = "zone_full"
	FailureCategoryFull EntryFailure = "category_full"
	FailureAllFull      EntryFailure = "all_full"
)

// EntryResult is the outcome of EnterVehicle. Failures are values, not errors.
type EntryResult struct {
	Success bool           `json:"success"`
	Ticket  *models.Ticket `json:"ticket,omitempty"`
	Message string         `json:"message,omitempty"`
	Reason  EntryFailure   `json:"reason,omitempty"`
}

func entryFailure(reason EntryFailure, format string, args ...interface{}) EntryResult {
	return EntryResult{Success: false, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ZoneUpdate carries the fields of a partial zone edit. Nil fields are kept.
type ZoneUpdate struct {
	Name     *string                `json:"name,omitempty"`
	Capacity *int                   `json:"capacity,omitempty"`
	Limits   *models.CategoryCounts `json:"limits,omitempty"`
}

// RestoreResult reports what RestoreData did with each record.
type RestoreResult struct {
	Restored int                    `json:"restored"`
	Skipped  int                    `json:"skipped"`
	Dropped  []models.VehicleRecord `json:"dropped"`
}

// VehicleMatch is a search hit.
type VehicleMatch struct {
	Vehicle  models.Vehicle `json:"vehicle"`
	ZoneID   string         `json:"zoneId"`
	ZoneName string         `json:"zoneName"`
}

// Summary aggregates every zone.
type Summary struct {
	Zones              int                   `json:"zones"`
	TotalCapacity      int                   `json:"totalCapacity"`
	TotalOccupied      int                   `json:"totalOccupied"`
	Available          int                   `json:"available"`
	OccupancyRate      int                   `json:"occupancyRate"`
	PredictedOccupancy int                   `json:"predictedOccupancy"`
	Limits             models.CategoryCounts `json:"limits"`
	Stats              models.CategoryCounts `json:"stats"`
}

// ------------------------ service ------------------------

// ParkingService is the single source of truth for zone and vehicle state.
// Every operation takes the service mutex, so callers observe a linearised
// history.
type ParkingService struct {
	mu          sync.Mutex
	zones       []*models.ParkingZone
	nextZoneID  int
	version     uint64
	recorder    EventRecorder
	broadcaster Broadcaster
}

var _ ParkingServiceInterface = (*ParkingService)(nil)

// NewParkingService creates a store holding copies of zones. recorder and
// broadcaster may be nil.
func NewParkingService(zones []models.ParkingZone, recorder EventRecorder, broadcaster Broadcaster) *ParkingService {
	s := &ParkingService{recorder: recorder, broadcaster: broadcaster, nextZoneID: 1}
	for i := range zones {
		z := zones[i].Clone()
		s.zones = append(s.zones, &z)
		if n, ok := zoneNumber(z.ID); ok && n >= s.nextZoneID {
			s.nextZoneID = n + 1
		}
	}
	if s.nextZoneID <= len(s.zones) {
		s.nextZoneID = len(s.zones) + 1
	}
	logger.Info.Printf("[ParkingService] Initialised with %d zones", len(s.zones))
	return s
}

// SetBroadcaster attaches the live update channel.
func (s *ParkingService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

func zoneNumber(id string) (int, bool) {
	if !strings.HasPrefix(id, "Z") {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	return n, err == nil
}

// findZone returns the zone with id. Callers hold s.mu.
func (s *ParkingService) findZone(id string) (int, *models.ParkingZone) {
	for i, z := range s.zones {
		if z.ID == id {
			return i, z
		}
	}
	return -1, nil
}

// ------------------------ reads ------------------------

// Zones returns a deep copy of every zone in list order.
func (s *ParkingService) Zones() []models.ParkingZone {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ParkingZone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z.Clone())
	}
	return out
}

// Zone returns a copy of the zone with id.
func (s *ParkingService) Zone(id string) (models.ParkingZone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, z := s.findZone(id)
	if z == nil {
		return models.ParkingZone{}, fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	return z.Clone(), nil
}

// TotalCapacity sums every zone's capacity.
func (s *ParkingService) TotalCapacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, z := range s.zones {
		total += z.Capacity
	}
	return total
}

// TotalOccupied sums every zone's occupancy.
func (s *ParkingService) TotalOccupied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, z := range s.zones {
		total += z.Occupied
	}
	return total
}

// Version increases on every mutation.
func (s *ParkingService) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Summary computes the dashboard aggregates.
func (s *ParkingService) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *ParkingService) summaryLocked() Summary {
	sum := Summary{Zones: len(s.zones)}
	for _, z := range s.zones {
		sum.TotalCapacity += z.Capacity
		sum.TotalOccupied += z.Occupied
		for _, t := range models.VehicleTypes {
			sum.Limits.Add(t, z.Limits.Get(t))
			sum.Stats.Add(t, z.Stats.Get(t))
		}
	}
	sum.Available = sum.TotalCapacity - sum.TotalOccupied
	if sum.Available < 0 {
		sum.Available = 0
	}
	if sum.TotalCapacity > 0 {
		sum.OccupancyRate = int(math.Round(float64(sum.TotalOccupied) / float64(sum.TotalCapacity) * 100))
	}
	sum.PredictedOccupancy = int(math.Round(float64(sum.TotalOccupied) * 1.2))
	if sum.PredictedOccupancy > sum.TotalCapacity {
		sum.PredictedOccupancy = sum.TotalCapacity
	}
	return sum
}

// Records flattens the roster into backup records.
func (s *ParkingService) Records() []models.VehicleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.VehicleRecord{}
	for _, z := range s.zones {
		for _, v := range z.Vehicles {
			out = append(out, models.NewVehicleRecord(v, z.Name))
		}
	}
	return out
}

// FindTicket looks up the ticket of a parked vehicle.
func (s *ParkingService) FindTicket(ticketID string) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, z := range s.zones {
		for _, v := range z.Vehicles {
			if v.TicketID == ticketID {
				return models.NewTicket(v, z), nil
			}
		}
	}
	return models.Ticket{}, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
}

// SearchVehicles returns every parked vehicle whose plate contains query,
// ignoring case. An empty query matches nothing.
func (s *ParkingService) SearchVehicles(query string) []VehicleMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []VehicleMatch
	for _, z := range s.zones {
		for _, v := range z.Vehicles {
			if strings.Contains(strings.ToLower(v.Number), q) {
				matches = append(matches, VehicleMatch{Vehicle: v, ZoneID: z.ID, ZoneName: z.Name})
			}
		}
	}
	return matches
}

// ------------------------ vehicle admission ------------------------

// EnterVehicle admits a vehicle. With an empty zoneID the first zone with
// free total and category capacity is used. An empty vType means light.
func (s *ParkingService) EnterVehicle(plate string, vType models.VehicleType, zoneID, slot string) EntryResult {
	result, event := s.enterVehicle(strings.TrimSpace(plate), vType, strings.TrimSpace(zoneID), strings.TrimSpace(slot))
	if !result.Success {
		logger.Warn.Printf("[ParkingService.EnterVehicle] Rejected plate=%q zone=%q: %s", plate, zoneID, result.Message)
		return result
	}
	logger.Info.Printf("[ParkingService.EnterVehicle] Admitted %s (%s) to %s, ticket=%s",
		result.Ticket.VehicleNumber, result.Ticket.Type, result.Ticket.ZoneID, result.Ticket.TicketID)
	s.recordEvent(event)
	s.publish("vehicleEntered")
	return result
}

func (s *ParkingService) enterVehicle(plate string, vType models.VehicleType, zoneID, slot string) (EntryResult, models.AuditEvent) {
	if plate == "" {
		return entryFailure(FailureInvalid, "Vehicle number is required"), models.AuditEvent{}
	}
	vType, err := models.ParseVehicleType(string(vType))
	if err != nil {
		return entryFailure(FailureInvalid, "%s", err.Error()), models.AuditEvent{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var zone *models.ParkingZone
	if zoneID != "" {
		_, zone = s.findZone(zoneID)
		switch {
		case zone == nil:
			return entryFailure(FailureZoneNotFound, "Zone %s not found!", zoneID), models.AuditEvent{}
		case zone.Occupied >= zone.Capacity:
			return entryFailure(FailureZoneFull, "Zone %s is full!", zone.Name), models.AuditEvent{}
		case zone.Stats.Get(vType) >= zone.Limits.Get(vType):
			return entryFailure(FailureCategoryFull, "Zone %s is full for %s vehicles!", zone.Name, vType), models.AuditEvent{}
		}
	} else {
		for _, z := range s.zones {
			if z.HasRoomFor(vType) {
				zone = z
				break
			}
		}
		if zone == nil {
			return entryFailure(FailureAllFull, "All zones full for category %s", vType), models.AuditEvent{}
		}
	}

	vehicle := models.Vehicle{
		Number:    plate,
		EntryTime: timeNow(),
		ZoneID:    zone.ID,
		TicketID:  newTicketID(),
		Type:      vType,
		Slot:      slot,
	}
	zone.Vehicles = append([]models.Vehicle{vehicle}, zone.Vehicles...)
	zone.Occupied++
	zone.Stats.Add(vType, 1)
	s.version++

	ticket := models.NewTicket(vehicle, zone)
	event := models.AuditEvent{
		Kind:     models.EventVehicleEntered,
		Plate:    plate,
		ZoneID:   zone.ID,
		TicketID: vehicle.TicketID,
		Type:     vType,
		At:       vehicle.EntryTime,
	}
	return EntryResult{Success: true, Ticket: &ticket}, event
}

// ExitVehicle releases the vehicle holding ticketID and returns its record
// with the exit time filled in.
func (s *ParkingService) ExitVehicle(ticketID string) (models.VehicleRecord, error) {
	s.mu.Lock()
	var (
		record models.VehicleRecord
		event  models.AuditEvent
		found  bool
	)
	for _, z := range s.zones {
		for i, v := range z.Vehicles {
			if v.TicketID != ticketID {
				continue
			}
			z.Vehicles = append(z.Vehicles[:i:i], z.Vehicles[i+1:]...)
			z.Occupied--
			z.Stats.Add(v.Type, -1)
			s.version++

			now := timeNow()
			record = models.NewVehicleRecord(v, z.Name)
			record.TimeOut.SetValid(now.UTC().Format(models.RecordTimeLayout))
			event = models.AuditEvent{Kind: models.EventVehicleExited, Plate: v.Number, ZoneID: z.ID, TicketID: v.TicketID, Type: v.Type, At: now}
			found = true
			break
		}
		if found {
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return models.VehicleRecord{}, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	logger.Info.Printf("[ParkingService.ExitVehicle] Released %s from %s, ticket=%s", record.Plate, record.Zone, ticketID)
	s.recordEvent(event)
	s.publish("vehicleExited")
	return record, nil
}

// ------------------------ zone management ------------------------

func validateZone(name string, capacity int, limits models.CategoryCounts) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidZone)
	}
	if capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", ErrInvalidZone)
	}
	if limits.Heavy < 0 || limits.Medium < 0 || limits.Light < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidZone)
	}
	return nil
}

// AddZone appends a new empty zone with the next sequential id.
func (s *ParkingService) AddZone(name string, capacity int, limits models.CategoryCounts) (models.ParkingZone, error) {
	if err := validateZone(name, capacity, limits); err != nil {
		return models.ParkingZone{}, err
	}

	s.mu.Lock()
	id := fmt.Sprintf("Z%d", s.nextZoneID)
	for _, existing := s.findZone(id); existing != nil; _, existing = s.findZone(id) {
		s.nextZoneID++
		id = fmt.Sprintf("Z%d", s.nextZoneID)
	}
	s.nextZoneID++
	zone := &models.ParkingZone{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Capacity: capacity,
		Vehicles: []models.Vehicle{},
		Limits:   limits,
	}
	s.zones = append(s.zones, zone)
	s.version++
	out := zone.Clone()
	s.mu.Unlock()

	logger.Info.Printf("[ParkingService.AddZone] Added zone %s (%s) capacity=%d limits=%+v", id, out.Name, capacity, limits)
	s.publish("zoneAdded")
	return out, nil
}

// UpdateZone merges update into the zone. Parked vehicles are not checked
// against smaller limits; an over-full zone simply admits nothing until it
// drains.
func (s *ParkingService) UpdateZone(id string, update ZoneUpdate) (models.ParkingZone, error) {
	s.mu.Lock()
	_, zone := s.findZone(id)
	if zone == nil {
		s.mu.Unlock()
		return models.ParkingZone{}, fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}

	name, capacity, limits := zone.Name, zone.Capacity, zone.Limits
	if update.Name != nil {
		name = strings.TrimSpace(*update.Name)
	}
	if update.Capacity != nil {
		capacity = *update.Capacity
	}
	if update.Limits != nil {
		limits = *update.Limits
	}
	if err := validateZone(name, capacity, limits); err != nil {
		s.mu.Unlock()
		return models.ParkingZone{}, err
	}

	zone.Name, zone.Capacity, zone.Limits = name, capacity, limits
	s.version++
	out := zone.Clone()
	s.mu.Unlock()

	if out.Occupied > out.Capacity {
		logger.Warn.Printf("[ParkingService.UpdateZone] Zone %s now holds %d vehicles over capacity %d", id, out.Occupied, out.Capacity)
	}
	for _, t := range models.VehicleTypes {
		if out.Stats.Get(t) > out.Limits.Get(t) {
			logger.Warn.Printf("[ParkingService.UpdateZone] Zone %s holds %d %s vehicles over limit %d", id, out.Stats.Get(t), t, out.Limits.Get(t))
		}
	}
	logger.Info.Printf("[ParkingService.UpdateZone] Updated zone %s: name=%q capacity=%d limits=%+v", id, name, capacity, limits)
	s.publish("zoneUpdated")
	return out, nil
}

// DeleteZone removes the zone and its vehicles. It reports whether the zone existed.
func (s *ParkingService) DeleteZone(id string) bool {
	s.mu.Lock()
	i, zone := s.findZone(id)
	if zone == nil {
		s.mu.Unlock()
		logger.Warn.Printf("[ParkingService.DeleteZone] Zone %s not found", id)
		return false
	}
	s.zones = append(s.zones[:i:i], s.zones[i+1:]...)
	s.version++
	s.mu.Unlock()

	logger.Info.Printf("[ParkingService.DeleteZone] Deleted zone %s (%s) with %d vehicles", id, zone.Name, zone.Occupied)
	s.publish("zoneDeleted")
	return true
}

// ------------------------ restore ------------------------

// RestoreData rebuilds the roster from backup records. Every zone is emptied
// first; checked-out records are skipped and every restored vehicle gets a
// new ticket id. Records that fit nowhere are dropped and returned.
func (s *ParkingService) RestoreData(records []models.VehicleRecord) RestoreResult {
	result := RestoreResult{Dropped: []models.VehicleRecord{}}

	s.mu.Lock()
	for _, z := range s.zones {
		z.Vehicles = []models.Vehicle{}
		z.Occupied = 0
		z.Stats = models.CategoryCounts{}
	}

	for _, rec := range records {
		if rec.CheckedOut() {
			result.Skipped++
			continue
		}
		vType, err := models.ParseVehicleType(string(rec.Type))
		if err != nil {
			logger.Warn.Printf("[ParkingService.RestoreData] Record %s has unknown type %q, treating as light", rec.Plate, rec.Type)
			vType = models.Light
		}

		zone := s.resolveZone(rec.Zone)
		if zone != nil && !zone.HasRoomFor(vType) {
			zone = nil
			for _, z := range s.zones {
				if z.HasRoomFor(vType) {
					zone = z
					break
				}
			}
		}
		if zone == nil {
			logger.Warn.Printf("[ParkingService.RestoreData] Dropping %s (%s): no zone has room for %s vehicles", rec.Plate, rec.Zone, vType)
			result.Dropped = append(result.Dropped, rec)
			continue
		}

		zone.Vehicles = append(zone.Vehicles, models.Vehicle{
			Number:    rec.Plate,
			EntryTime: parseRecordTime(rec.TimeIn),
			ZoneID:    zone.ID,
			TicketID:  newTicketID(),
			Type:      vType,
		})
		zone.Occupied++
		zone.Stats.Add(vType, 1)
		result.Restored++
	}

	for _, z := range s.zones {
		sort.SliceStable(z.Vehicles, func(i, j int) bool {
			return z.Vehicles[i].EntryTime.After(z.Vehicles[j].EntryTime)
		})
	}
	s.version++
	s.mu.Unlock()

	logger.Info.Printf("[ParkingService.RestoreData] Restored %d records, skipped %d checked out, dropped %d",
		result.Restored, result.Skipped, len(result.Dropped))
	s.publish("restored")
	return result
}

// resolveZone maps a record's zone text onto a zone: exact name, then id,
// then the closest lenient name match, then the first zone. Callers hold s.mu.
func (s *ParkingService) resolveZone(ref string) *models.ParkingZone {
	if len(s.zones) == 0 {
		return nil
	}
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref != "" {
		for _, z := range s.zones {
			if strings.ToLower(z.Name) == ref {
				return z
			}
		}
		for _, z := range s.zones {
			if strings.ToLower(z.ID) == ref {
				return z
			}
		}

		var best *models.ParkingZone
		bestDiff := math.MaxInt
		for _, z := range s.zones {
			name := strings.ToLower(z.Name)
			if name == "" || !(strings.Contains(name, ref) || strings.Contains(ref, name)) {
				continue
			}
			diff := len(name) - len(ref)
			if diff < 0 {
				diff = -diff
			}
			if diff < bestDiff {
				best, bestDiff = z, diff
			}
		}
		if best != nil {
			return best
		}
	}
	return s.zones[0]
}

var recordTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// parseTimestamp tries every accepted backup layout.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range recordTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseRecordTime reads a backup timestamp, falling back to now.
func parseRecordTime(s string) time.Time {
	if t, ok := parseTimestamp(s); ok {
		return t
	}
	logger.Warn.Printf("[parseRecordTime] Unrecognised time %q, using current time", s)
	return timeNow()
}

// ------------------------ side effects ------------------------

// recordEvent appends ev to the audit log without waiting for the result.
func (s *ParkingService) recordEvent(ev models.AuditEvent) {
	if s.recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.recorder.AppendEvent(ctx, ev); err != nil {
			logger.Warn.Printf("[ParkingService.recordEvent] Failed to persist %s for %s: %v", ev.Kind, ev.Plate, err)
		}
	}()
}

// publish pushes the new totals to dashboards.
func (s *ParkingService) publish(reason string) {
	s.mu.Lock()
	b := s.broadcaster
	summary := s.summaryLocked()
	s.mu.Unlock()
	if b == nil {
		return
	}
	b.BroadcastMessage(ZonesTopic, map[string]interface{}{
		"action":  "zonesChanged",
		"reason":  reason,
		"summary": summary,
	})
}
