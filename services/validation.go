// services/validation.go
package services

import (
	"fmt"
	"strings"

	"nilakkal-parking/models"
)

// RecordError lists the missing fields of one record.
type RecordError struct {
	Index   int      `json:"index"`
	Plate   string   `json:"plate,omitempty"`
	Missing []string `json:"missing"`
}

// ValidationError rejects a restore or import. Nothing is written when it is returned.
type ValidationError struct {
	Reason  string        `json:"reason"`
	Records []RecordError `json:"records,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Records) == 0 {
		return e.Reason
	}
	first := e.Records[0]
	return fmt.Sprintf("%s: record %d missing %s (%d invalid records)",
		e.Reason, first.Index, strings.Join(first.Missing, ", "), len(e.Records))
}

const missingFieldsReason = "Invalid data: missing required fields (plate, zone, timeIn)"

// ValidateRecords checks that every record has a plate, zone and timeIn.
func ValidateRecords(records []models.VehicleRecord) error {
	var bad []RecordError
	for i, r := range records {
		var missing []string
		if strings.TrimSpace(r.Plate) == "" {
			missing = append(missing, "plate")
		}
		if strings.TrimSpace(r.Zone) == "" {
			missing = append(missing, "zone")
		}
		if strings.TrimSpace(r.TimeIn) == "" {
			missing = append(missing, "timeIn")
		}
		if len(missing) > 0 {
			bad = append(bad, RecordError{Index: i, Plate: r.Plate, Missing: missing})
		}
	}
	if len(bad) > 0 {
		return &ValidationError{Reason: missingFieldsReason, Records: bad}
	}
	return nil
}
