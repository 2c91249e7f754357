// services/autosave.go
package services

import (
	"context"
	"sync"
	"time"

	"nilakkal-parking/logger"
	"nilakkal-parking/models"
)

// RosterSource exposes the live roster to the auto-saver.
type RosterSource interface {
	Records() []models.VehicleRecord
	Version() uint64
}

// SnapshotSaver stores a roster snapshot.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, records []models.VehicleRecord) (models.BackupSnapshot, error)
}

// AutoSaver periodically snapshots the roster. Ticks where nothing changed
// since the last save are skipped.
type AutoSaver struct {
	source RosterSource
	saver  SnapshotSaver
	task   *PeriodicTask

	mu        sync.Mutex
	saved     bool
	lastSaved uint64
}

// NewAutoSaver creates a stopped auto-saver.
func NewAutoSaver(source RosterSource, saver SnapshotSaver, interval time.Duration) *AutoSaver {
	a := &AutoSaver{source: source, saver: saver}
	a.task = NewPeriodicTask("auto-save", interval, func(ctx context.Context) {
		if _, err := a.saveIfChanged(ctx); err != nil {
			logger.Error.Printf("[AutoSaver] Periodic save failed: %v", err)
		}
	})
	return a
}

// Start begins periodic saving.
func (a *AutoSaver) Start(ctx context.Context) {
	a.task.Start(ctx)
}

// SaveNow snapshots the roster if it changed since the last save. It
// reports whether a snapshot was written.
func (a *AutoSaver) SaveNow(ctx context.Context) (bool, error) {
	return a.saveIfChanged(ctx)
}

// Stop halts the ticker and makes a final best-effort save.
func (a *AutoSaver) Stop(ctx context.Context) error {
	a.task.Stop()
	_, err := a.saveIfChanged(ctx)
	if err != nil {
		logger.Error.Printf("[AutoSaver.Stop] Final save failed: %v", err)
	}
	return err
}

func (a *AutoSaver) saveIfChanged(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	version := a.source.Version()
	if a.saved && version == a.lastSaved {
		logger.Debug.Printf("[AutoSaver] Roster unchanged since version %d, skipping", version)
		return false, nil
	}
	snap, err := a.saver.SaveSnapshot(ctx, a.source.Records())
	if err != nil {
		return false, err
	}
	a.saved, a.lastSaved = true, version
	logger.Info.Printf("[AutoSaver] Saved snapshot %d (roster version %d)", snap.ID, version)
	return true, nil
}
