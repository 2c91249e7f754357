// File: models/backup.go
package models

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// ---------------------- backup records ----------------------

// VehicleRecord is the flattened form of a parked vehicle stored in backups.
// TimeOut is null while the vehicle is still parked.
type VehicleRecord struct {
	Plate   string      `json:"plate"`
	Zone    string      `json:"zone"`
	TimeIn  string      `json:"timeIn"`
	TimeOut null.String `json:"timeOut"`
	Type    VehicleType `json:"type,omitempty"`
}

// CheckedOut reports whether the record carries an exit time.
func (r VehicleRecord) CheckedOut() bool {
	return r.TimeOut.Valid && r.TimeOut.String != ""
}

// RecordTimeLayout is the text form of TimeIn/TimeOut.
const RecordTimeLayout = time.RFC3339

// NewVehicleRecord flattens v parked in the zone named zoneName.
func NewVehicleRecord(v Vehicle, zoneName string) VehicleRecord {
	return VehicleRecord{
		Plate:  v.Number,
		Zone:   zoneName,
		TimeIn: v.EntryTime.UTC().Format(RecordTimeLayout),
		Type:   v.Type,
	}
}

// ---------------------- snapshot model ----------------------

// SnapshotMeta describes a stored snapshot.
type SnapshotMeta struct {
	App         string    `json:"app"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	RecordCount int       `json:"recordCount"`
}

// BackupSnapshot is an immutable copy of the vehicle roster.
type BackupSnapshot struct {
	ID   int64           `json:"id"`
	Meta SnapshotMeta    `json:"meta"`
	Data []VehicleRecord `json:"data"`
}

// SnapshotSchemaVersion is written into every new snapshot.
const SnapshotSchemaVersion = 1

// ---------------------- audit events ----------------------

// AuditEvent is appended to the backup store whenever the roster changes.
type AuditEvent struct {
	Kind     string      `json:"kind"`
	Plate    string      `json:"plate"`
	ZoneID   string      `json:"zoneId"`
	TicketID string      `json:"ticketId"`
	Type     VehicleType `json:"type"`
	At       time.Time   `json:"at"`
}

const (
	EventVehicleEntered = "vehicle.entered"
	EventVehicleExited  = "vehicle.exited"
)
