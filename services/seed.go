// services/seed.go
package services

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"nilakkal-parking/models"
)

// SeedOptions controls the zones created at startup.
type SeedOptions struct {
	Zones    int
	Capacity int
	// Fill pre-parks random vehicles, up to 80% of each zone.
	Fill bool
}

// SeedZones builds the initial Nilakkal zones. rnd may be nil.
func SeedZones(opts SeedOptions, rnd *rand.Rand) []models.ParkingZone {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := timeNow()
	zones := make([]models.ParkingZone, 0, opts.Zones)
	for i := 1; i <= opts.Zones; i++ {
		zone := models.ParkingZone{
			ID:       fmt.Sprintf("Z%d", i),
			Name:     fmt.Sprintf("Nilakkal Zone %d", i),
			Capacity: opts.Capacity,
			Vehicles: []models.Vehicle{},
			Limits:   models.SplitCapacity(opts.Capacity),
		}
		if opts.Fill && opts.Capacity > 0 {
			target := rnd.Intn(opts.Capacity*8/10 + 1)
			for len(zone.Vehicles) < target {
				vType := admittableType(&zone, RandomVehicleType(rnd))
				if vType == "" {
					break
				}
				zone.Vehicles = append(zone.Vehicles, models.Vehicle{
					Number:    RandomPlate(rnd),
					EntryTime: now.Add(-time.Duration(rnd.Int63n(int64(3 * time.Hour)))),
					ZoneID:    zone.ID,
					TicketID:  newTicketID(),
					Type:      vType,
				})
				zone.Occupied++
				zone.Stats.Add(vType, 1)
			}
			sort.SliceStable(zone.Vehicles, func(a, b int) bool {
				return zone.Vehicles[a].EntryTime.After(zone.Vehicles[b].EntryTime)
			})
		}
		zones = append(zones, zone)
	}
	return zones
}

// admittableType returns want if the zone has room for it, otherwise another
// category with room, or "" when the zone is full.
func admittableType(zone *models.ParkingZone, want models.VehicleType) models.VehicleType {
	if zone.HasRoomFor(want) {
		return want
	}
	for _, t := range models.VehicleTypes {
		if zone.HasRoomFor(t) {
			return t
		}
	}
	return ""
}

// RandomVehicleType picks heavy 20%, medium 30% and light 50% of the time.
func RandomVehicleType(rnd *rand.Rand) models.VehicleType {
	r := rnd.Float64()
	switch {
	case r > 0.8:
		return models.Heavy
	case r > 0.5:
		return models.Medium
	default:
		return models.Light
	}
}

// RandomPlate returns a Kerala style registration such as KL-07-AB-1234.
func RandomPlate(rnd *rand.Rand) string {
	return fmt.Sprintf("KL-%02d-%c%c-%04d",
		rnd.Intn(99)+1, 'A'+rune(rnd.Intn(26)), 'A'+rune(rnd.Intn(26)), rnd.Intn(10000))
}
