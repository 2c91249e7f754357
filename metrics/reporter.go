// file: metrics/reporter.go
package metrics

import (
	"context"

	"nilakkal-parking/logger"
	"nilakkal-parking/models"
)

// ZoneSource lists the current zones.
type ZoneSource interface {
	Zones() []models.ParkingZone
}

// ConnectionCounter reports live websocket clients.
type ConnectionCounter interface {
	ConnectionCount() int
}

// Reporter turns zone state into gauges.
type Reporter struct {
	zones       ZoneSource
	connections ConnectionCounter
	publisher   Publisher
}

// NewReporter creates a reporter. connections may be nil.
func NewReporter(zones ZoneSource, connections ConnectionCounter, publisher Publisher) *Reporter {
	return &Reporter{zones: zones, connections: connections, publisher: publisher}
}

// Collect builds the gauges for the current state.
func (r *Reporter) Collect() []Datum {
	var data []Datum
	occupied, capacity := 0, 0
	for _, z := range r.zones.Zones() {
		occupied += z.Occupied
		capacity += z.Capacity
		data = append(data,
			Datum{Name: "ZoneOccupied", Value: float64(z.Occupied), Zone: z.Name},
			Datum{Name: "ZoneAvailable", Value: float64(max(z.Capacity-z.Occupied, 0)), Zone: z.Name},
		)
	}
	data = append(data,
		Datum{Name: "TotalOccupied", Value: float64(occupied)},
		Datum{Name: "TotalCapacity", Value: float64(capacity)},
	)
	if r.connections != nil {
		data = append(data, Datum{Name: "DashboardConnections", Value: float64(r.connections.ConnectionCount())})
	}
	return data
}

// Report publishes the current gauges. Errors are logged only.
func (r *Reporter) Report(ctx context.Context) {
	if err := r.publisher.Publish(ctx, r.Collect()); err != nil {
		logger.Warn.Printf("[Reporter.Report] Failed to publish metrics: %v", err)
	}
}
