// services/simulator.go
package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"nilakkal-parking/logger"
)

// TrafficSimulator randomly admits and releases vehicles so dashboards show
// live movement. All changes go through ParkingService.
type TrafficSimulator struct {
	parking *ParkingService

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewTrafficSimulator creates a simulator. rnd may be nil.
func NewTrafficSimulator(parking *ParkingService, rnd *rand.Rand) *TrafficSimulator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TrafficSimulator{parking: parking, rnd: rnd}
}

// Step visits every zone once. Each zone changes with probability 0.2,
// evenly split between an arrival and the departure of its oldest vehicle.
func (s *TrafficSimulator) Step() (entered, exited int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, zone := range s.parking.Zones() {
		if s.rnd.Float64() >= 0.2 {
			continue
		}
		if s.rnd.Float64() < 0.5 {
			vType := RandomVehicleType(s.rnd)
			if !zone.HasRoomFor(vType) {
				continue
			}
			res := s.parking.EnterVehicle(RandomPlate(s.rnd), vType, zone.ID, "")
			if res.Success {
				entered++
			}
			continue
		}
		if len(zone.Vehicles) == 0 {
			continue
		}
		oldest := zone.Vehicles[len(zone.Vehicles)-1]
		if _, err := s.parking.ExitVehicle(oldest.TicketID); err != nil {
			if !errors.Is(err, ErrTicketNotFound) {
				logger.Warn.Printf("[TrafficSimulator.Step] Failed to release %s: %v", oldest.TicketID, err)
			}
			continue
		}
		exited++
	}
	return entered, exited
}

// Task wraps Step in a PeriodicTask.
func (s *TrafficSimulator) Task(interval time.Duration) *PeriodicTask {
	return NewPeriodicTask("traffic-simulator", interval, func(context.Context) {
		entered, exited := s.Step()
		logger.Debug.Printf("[TrafficSimulator] %d entered, %d exited", entered, exited)
	})
}
