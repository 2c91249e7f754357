// Package storage persists backup snapshots and audit events.
// File: storage/backup_store.go
package storage

import (
	"context"
	"errors"
	"sort"

	"nilakkal-parking/models"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// BackupsTable is the logical table holding snapshots.
const BackupsTable = "backups"

// maxEvents bounds the audit log kept by every store.
const maxEvents = 1000

// BackupStore is a per-application store of snapshots keyed by an
// auto-incrementing id. Snapshots are never modified once added.
type BackupStore interface {
	// Add stores snap under a newly assigned id and returns the stored copy.
	Add(ctx context.Context, snap models.BackupSnapshot) (models.BackupSnapshot, error)
	// List returns every snapshot, newest first by creation time.
	List(ctx context.Context) ([]models.BackupSnapshot, error)
	// Get returns the snapshot with id or ErrSnapshotNotFound.
	Get(ctx context.Context, id int64) (models.BackupSnapshot, error)
	// Delete removes the snapshot with id or returns ErrSnapshotNotFound.
	Delete(ctx context.Context, id int64) error
	// AppendEvent adds ev to the audit log.
	AppendEvent(ctx context.Context, ev models.AuditEvent) error
	// Events returns the audit log, oldest first.
	Events(ctx context.Context) ([]models.AuditEvent, error)
	Close() error
}

// DBName returns the store name for an application tag.
func DBName(app string) string {
	return app + "-backup-db"
}

// sortNewestFirst orders snapshots by creation time, newest first; ties are
// broken by the higher id.
func sortNewestFirst(snaps []models.BackupSnapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		a, b := snaps[i].Meta.CreatedAt, snaps[j].Meta.CreatedAt
		if a.Equal(b) {
			return snaps[i].ID > snaps[j].ID
		}
		return a.After(b)
	})
}
