// file: services/backup_service_test.go
package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"
	"nilakkal-parking/models"
	"nilakkal-parking/services"
	"nilakkal-parking/storage"
)

// failingStore rejects every write.
type failingStore struct {
	storage.BackupStore
}

func (failingStore) Add(context.Context, models.BackupSnapshot) (models.BackupSnapshot, error) {
	return models.BackupSnapshot{}, errors.New("disk full")
}

func newBackupService(t *testing.T, restorer services.Restorer) (*services.BackupService, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore("", "nilakkal-police")
	require.NoError(t, err)
	return services.NewBackupService(store, "nilakkal-police", restorer), store
}

func sampleRecords() []models.VehicleRecord {
	return []models.VehicleRecord{
		{Plate: "KL-01-AA-0001", Zone: "Nilakkal Zone 1", TimeIn: "2025-01-10T08:00:00Z", Type: models.Light},
		{Plate: "KL-01-AA-0002", Zone: "Nilakkal Zone 2", TimeIn: "2025-01-10T08:05:00Z", Type: models.Heavy},
	}
}

// Test: snapshots carry metadata and are listed newest first
func TestBackupService_SaveAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBackupService(t, nil)

	first, err := svc.SaveSnapshot(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, "nilakkal-police", first.Meta.App)
	assert.Equal(t, models.SnapshotSchemaVersion, first.Meta.Version)
	assert.Equal(t, 2, first.Meta.RecordCount)
	assert.False(t, first.Meta.CreatedAt.IsZero())

	second, err := svc.SaveSnapshot(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Meta.RecordCount)
	assert.NotNil(t, second.Data)

	list, err := svc.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.NoError(t, svc.DeleteSnapshot(ctx, first.ID))
	assert.ErrorIs(t, svc.DeleteSnapshot(ctx, first.ID), storage.ErrSnapshotNotFound)
	_, err = svc.GetSnapshot(ctx, first.ID)
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

// Test: storage failures are returned to the caller
func TestBackupService_SaveFailure(t *testing.T) {
	svc := services.NewBackupService(failingStore{}, "nilakkal-police", nil)
	_, err := svc.SaveSnapshot(context.Background(), sampleRecords())
	assert.EqualError(t, err, "disk full")
}

// Test: restore validates every record before touching the roster
func TestBackupService_RestoreValidation(t *testing.T) {
	parking := services.NewParkingService([]models.ParkingZone{standardZone("Z1", "Nilakkal Zone 1")}, nil, nil)
	parking.EnterVehicle("KL-LIVE-0001", models.Light, "Z1", "")
	svc, _ := newBackupService(t, parking)

	bad := models.BackupSnapshot{ID: 7, Data: []models.VehicleRecord{
		{Plate: "KL-01-AA-0001", Zone: "Nilakkal Zone 1", TimeIn: "2025-01-10T08:00:00Z"},
		{Plate: "", Zone: "Nilakkal Zone 1", TimeIn: ""},
	}}
	_, err := svc.RestoreSnapshot(bad)

	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Invalid data: missing required fields (plate, zone, timeIn)", verr.Reason)
	require.Len(t, verr.Records, 1)
	assert.Equal(t, 1, verr.Records[0].Index)
	assert.Equal(t, []string{"plate", "timeIn"}, verr.Records[0].Missing)

	assert.Equal(t, 1, parking.TotalOccupied(), "nothing restored on validation failure")
	assert.Len(t, parking.SearchVehicles("KL-LIVE"), 1)
}

// Test: a valid snapshot replaces the live roster
func TestBackupService_RestoreSnapshot(t *testing.T) {
	parking := services.NewParkingService([]models.ParkingZone{
		standardZone("Z1", "Nilakkal Zone 1"),
		standardZone("Z2", "Nilakkal Zone 2"),
	}, nil, nil)
	parking.EnterVehicle("KL-LIVE-0001", models.Light, "Z1", "")
	svc, _ := newBackupService(t, parking)

	snap, err := svc.SaveSnapshot(context.Background(), sampleRecords())
	require.NoError(t, err)

	result, err := svc.RestoreSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Restored)
	assert.Equal(t, 2, parking.TotalOccupied())
	assert.Empty(t, parking.SearchVehicles("KL-LIVE"))
}

// Test: CSV export quotes every field and doubles embedded quotes
func TestBackupService_ExportCSV(t *testing.T) {
	svc, _ := newBackupService(t, nil)
	snap := models.BackupSnapshot{Data: []models.VehicleRecord{
		{Plate: `KL "01"`, Zone: "Zone, North", TimeIn: "2025-01-10T08:00:00Z"},
		{Plate: "KL-02", Zone: "Zone 2", TimeIn: "2025-01-10T08:00:00Z", TimeOut: null.StringFrom("2025-01-10T09:00:00Z")},
	}}

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(snap, &buf))

	expected := strings.Join([]string{
		"plate,zone,timeIn,timeOut",
		`"KL ""01""","Zone, North","2025-01-10T08:00:00Z",""`,
		`"KL-02","Zone 2","2025-01-10T08:00:00Z","2025-01-10T09:00:00Z"`,
	}, "\n")
	assert.Equal(t, expected, buf.String())
}

// Test: JSON export can be imported again
func TestBackupService_ExportImportJSON(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBackupService(t, nil)

	snap, err := svc.SaveSnapshot(ctx, sampleRecords())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportJSON(snap, &buf))
	assert.Contains(t, buf.String(), "\n  \"meta\"")

	imported, err := svc.ImportJSON(ctx, &buf)
	require.NoError(t, err)
	assert.NotEqual(t, snap.ID, imported.ID)
	assert.Equal(t, snap.Data, imported.Data)
	assert.True(t, snap.Meta.CreatedAt.Equal(imported.Meta.CreatedAt), "createdAt is preserved")
}

// Test: import keeps meta version and recomputes the record count
func TestBackupService_ImportMetaDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBackupService(t, nil)

	payload := `{"meta":{"version":3,"recordCount":99,"createdAt":"2024-12-31T23:00:00Z"},
		"data":[{"plate":"KL-01","zone":"Nilakkal Zone 1","timeIn":"2025-01-10T08:00:00Z","timeOut":null}]}`
	snap, err := svc.ImportJSON(ctx, strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Meta.Version)
	assert.Equal(t, 1, snap.Meta.RecordCount)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), snap.Meta.CreatedAt.UTC())

	bare, err := svc.ImportJSON(ctx, strings.NewReader(`{"data":[]}`))
	require.NoError(t, err)
	assert.Equal(t, models.SnapshotSchemaVersion, bare.Meta.Version)
	assert.Equal(t, "nilakkal-police", bare.Meta.App)
	assert.False(t, bare.Meta.CreatedAt.IsZero())
}

// Test: import accepts the same createdAt layouts as record timestamps
func TestBackupService_ImportCreatedAtLayouts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBackupService(t, nil)

	snap, err := svc.ImportJSON(ctx, strings.NewReader(`{"meta":{"createdAt":"2024-12-31 23:00:00"},"data":[]}`))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), snap.Meta.CreatedAt.UTC())

	before := time.Now().Add(-time.Minute)
	odd, err := svc.ImportJSON(ctx, strings.NewReader(`{"meta":{"createdAt":"last tuesday"},"data":[]}`))
	require.NoError(t, err)
	assert.True(t, odd.Meta.CreatedAt.After(before), "unparsable createdAt falls back to the import time")
}

// Test: a payload without a data array is rejected and nothing is stored
func TestBackupService_ImportMissingData(t *testing.T) {
	ctx := context.Background()
	svc, store := newBackupService(t, nil)

	for _, payload := range []string{
		`{"meta":{"version":1}}`,
		`{"data":null}`,
		`{"data":{"plate":"KL-01"}}`,
		`not json`,
	} {
		_, err := svc.ImportJSON(ctx, strings.NewReader(payload))
		var verr *services.ValidationError
		require.True(t, errors.As(err, &verr), payload)
	}

	_, err := svc.ImportJSON(ctx, strings.NewReader(`{"meta":{}}`))
	assert.EqualError(t, err, "Invalid backup file format: missing data array.")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// Test: records missing required fields are rejected on import
func TestBackupService_ImportInvalidRecords(t *testing.T) {
	ctx := context.Background()
	svc, store := newBackupService(t, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"data": []map[string]string{{"plate": "KL-01", "zone": ""}},
	})
	_, err := svc.ImportJSON(ctx, bytes.NewReader(body))

	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"zone", "timeIn"}, verr.Records[0].Missing)

	list, _ := store.List(ctx)
	assert.Empty(t, list)
}

// Test: export filenames include the app, id and timestamp
func TestExportFilename(t *testing.T) {
	snap := models.BackupSnapshot{ID: 4, Meta: models.SnapshotMeta{CreatedAt: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)}}
	assert.Equal(t, "nilakkal-police-backup-4-20250110-080000.csv", services.ExportFilename("nilakkal-police", snap, "csv"))
}
