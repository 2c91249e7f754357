// services/backup_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"nilakkal-parking/logger"
	"nilakkal-parking/models"
	"nilakkal-parking/storage"
)

// Restorer receives validated records. ParkingService implements it.
type Restorer interface {
	RestoreData(records []models.VehicleRecord) RestoreResult
}

// BackupServiceInterface is the snapshot API used by controllers.
type BackupServiceInterface interface {
	SaveSnapshot(ctx context.Context, records []models.VehicleRecord) (models.BackupSnapshot, error)
	ListSnapshots(ctx context.Context) ([]models.BackupSnapshot, error)
	GetSnapshot(ctx context.Context, id int64) (models.BackupSnapshot, error)
	DeleteSnapshot(ctx context.Context, id int64) error
	RestoreSnapshot(snap models.BackupSnapshot) (RestoreResult, error)
	ExportCSV(snap models.BackupSnapshot, w io.Writer) error
	ExportJSON(snap models.BackupSnapshot, w io.Writer) error
	ImportJSON(ctx context.Context, r io.Reader) (models.BackupSnapshot, error)
}

// BackupService wraps a BackupStore with snapshot metadata, validation and
// file formats.
type BackupService struct {
	store    storage.BackupStore
	app      string
	restorer Restorer
}

var _ BackupServiceInterface = (*BackupService)(nil)

// NewBackupService creates a service tagging snapshots with app.
func NewBackupService(store storage.BackupStore, app string, restorer Restorer) *BackupService {
	return &BackupService{store: store, app: app, restorer: restorer}
}

// SaveSnapshot stores records under a new id.
func (s *BackupService) SaveSnapshot(ctx context.Context, records []models.VehicleRecord) (models.BackupSnapshot, error) {
	if records == nil {
		records = []models.VehicleRecord{}
	}
	snap := models.BackupSnapshot{
		Meta: models.SnapshotMeta{
			App:         s.app,
			Version:     models.SnapshotSchemaVersion,
			CreatedAt:   timeNow().UTC(),
			RecordCount: len(records),
		},
		Data: records,
	}
	saved, err := s.store.Add(ctx, snap)
	if err != nil {
		logger.Error.Printf("[BackupService.SaveSnapshot] Failed to save snapshot: %v", err)
		return models.BackupSnapshot{}, err
	}
	logger.Info.Printf("[BackupService.SaveSnapshot] Saved snapshot %d with %d records", saved.ID, saved.Meta.RecordCount)
	return saved, nil
}

// ListSnapshots returns every snapshot, newest first.
func (s *BackupService) ListSnapshots(ctx context.Context) ([]models.BackupSnapshot, error) {
	return s.store.List(ctx)
}

// GetSnapshot loads one snapshot.
func (s *BackupService) GetSnapshot(ctx context.Context, id int64) (models.BackupSnapshot, error) {
	return s.store.Get(ctx, id)
}

// DeleteSnapshot removes one snapshot.
func (s *BackupService) DeleteSnapshot(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info.Printf("[BackupService.DeleteSnapshot] Deleted snapshot %d", id)
	return nil
}

// RestoreSnapshot validates snap and replaces the live roster with its records.
func (s *BackupService) RestoreSnapshot(snap models.BackupSnapshot) (RestoreResult, error) {
	if err := ValidateRecords(snap.Data); err != nil {
		logger.Warn.Printf("[BackupService.RestoreSnapshot] Rejected snapshot %d: %v", snap.ID, err)
		return RestoreResult{}, err
	}
	if s.restorer == nil {
		return RestoreResult{}, fmt.Errorf("no restore target configured")
	}
	result := s.restorer.RestoreData(snap.Data)
	logger.Info.Printf("[BackupService.RestoreSnapshot] Restored snapshot %d: %d restored, %d dropped", snap.ID, result.Restored, len(result.Dropped))
	return result, nil
}

// ---------------------- export ----------------------

func csvField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportCSV writes plate,zone,timeIn,timeOut with every value quoted.
func (s *BackupService) ExportCSV(snap models.BackupSnapshot, w io.Writer) error {
	lines := make([]string, 0, len(snap.Data)+1)
	lines = append(lines, "plate,zone,timeIn,timeOut")
	for _, r := range snap.Data {
		lines = append(lines, strings.Join([]string{
			csvField(r.Plate),
			csvField(r.Zone),
			csvField(r.TimeIn),
			csvField(r.TimeOut.ValueOrZero()),
		}, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// ExportJSON writes the pretty-printed snapshot.
func (s *BackupService) ExportJSON(snap models.BackupSnapshot, w io.Writer) error {
	if snap.Data == nil {
		snap.Data = []models.VehicleRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ExportFilename names the download of snap.
func ExportFilename(app string, snap models.BackupSnapshot, ext string) string {
	return fmt.Sprintf("%s-backup-%d-%s.%s", app, snap.ID, snap.Meta.CreatedAt.UTC().Format("20060102-150405"), ext)
}

// ---------------------- import ----------------------

const missingDataReason = "Invalid backup file format: missing data array."

type importMeta struct {
	App       string `json:"app"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
}

type importFile struct {
	Meta *importMeta     `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// ImportJSON stores an exported snapshot as a new entry. Meta version and
// createdAt are kept when present; the record count is recomputed.
func (s *BackupService) ImportJSON(ctx context.Context, r io.Reader) (models.BackupSnapshot, error) {
	var file importFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return models.BackupSnapshot{}, &ValidationError{Reason: "Invalid backup file format: " + err.Error()}
	}
	raw := strings.TrimSpace(string(file.Data))
	if raw == "" || raw == "null" || !strings.HasPrefix(raw, "[") {
		return models.BackupSnapshot{}, &ValidationError{Reason: missingDataReason}
	}
	var records []models.VehicleRecord
	if err := json.Unmarshal(file.Data, &records); err != nil {
		return models.BackupSnapshot{}, &ValidationError{Reason: "Invalid backup file format: " + err.Error()}
	}
	if err := ValidateRecords(records); err != nil {
		return models.BackupSnapshot{}, err
	}

	meta := models.SnapshotMeta{
		App:         s.app,
		Version:     models.SnapshotSchemaVersion,
		CreatedAt:   timeNow().UTC(),
		RecordCount: len(records),
	}
	if file.Meta != nil {
		if file.Meta.App != "" {
			meta.App = file.Meta.App
		}
		if file.Meta.Version > 0 {
			meta.Version = file.Meta.Version
		}
		if file.Meta.CreatedAt != "" {
			if t, ok := parseTimestamp(file.Meta.CreatedAt); ok {
				meta.CreatedAt = t
			} else {
				logger.Warn.Printf("[BackupService.ImportJSON] Unrecognised createdAt %q, using import time", file.Meta.CreatedAt)
			}
		}
	}

	saved, err := s.store.Add(ctx, models.BackupSnapshot{Meta: meta, Data: records})
	if err != nil {
		logger.Error.Printf("[BackupService.ImportJSON] Failed to store imported snapshot: %v", err)
		return models.BackupSnapshot{}, err
	}
	logger.Info.Printf("[BackupService.ImportJSON] Imported snapshot %d with %d records", saved.ID, len(records))
	return saved, nil
}
