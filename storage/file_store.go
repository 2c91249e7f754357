// File: storage/file_store.go
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"nilakkal-parking/logger"
	"nilakkal-parking/models"
)

// fileLayout is the on-disk document of a FileStore.
type fileLayout struct {
	Name   string               `json:"name"`
	NextID int64                `json:"nextId"`
	Tables map[string][]fileRow `json:"tables"`
	Events []models.AuditEvent  `json:"events"`
}

type fileRow = models.BackupSnapshot

// FileStore keeps snapshots in memory and mirrors them to a JSON document
// named after the application. With an empty directory nothing is written
// to disk.
type FileStore struct {
	mu     sync.Mutex
	path   string
	name   string
	nextID int64
	rows   []models.BackupSnapshot
	events []models.AuditEvent
}

var _ BackupStore = (*FileStore)(nil)

// NewFileStore opens (or creates) <dir>/<app>-backup-db.json.
func NewFileStore(dir, app string) (*FileStore, error) {
	s := &FileStore{name: DBName(app), nextID: 1}
	if dir == "" {
		return s, nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	s.path = filepath.Join(dir, s.name+".json")

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info.Printf("[FileStore] Creating new backup store %s", s.path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open backup store: %w", err)
	}

	var doc fileLayout
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse backup store %s: %w", s.path, err)
	}
	s.rows = doc.Tables[BackupsTable]
	s.events = doc.Events
	s.nextID = doc.NextID
	for _, row := range s.rows {
		if row.ID >= s.nextID {
			s.nextID = row.ID + 1
		}
	}
	if s.nextID < 1 {
		s.nextID = 1
	}
	logger.Info.Printf("[FileStore] Loaded %d snapshots from %s", len(s.rows), s.path)
	return s, nil
}

// Path returns the backing file, or "" for a memory-only store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Add(_ context.Context, snap models.BackupSnapshot) (models.BackupSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.ID = s.nextID
	snap.Data = cloneRecords(snap.Data)
	s.rows = append(s.rows, snap)
	s.nextID++
	if err := s.flush(); err != nil {
		s.rows = s.rows[:len(s.rows)-1]
		s.nextID--
		return models.BackupSnapshot{}, err
	}
	return cloneSnapshot(snap), nil
}

func (s *FileStore) List(_ context.Context) ([]models.BackupSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.BackupSnapshot, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, cloneSnapshot(row))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *FileStore) Get(_ context.Context, id int64) (models.BackupSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID == id {
			return cloneSnapshot(row), nil
		}
	}
	return models.BackupSnapshot{}, ErrSnapshotNotFound
}

func (s *FileStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.rows {
		if row.ID != id {
			continue
		}
		prev := s.rows
		s.rows = append(append([]models.BackupSnapshot{}, s.rows[:i]...), s.rows[i+1:]...)
		if err := s.flush(); err != nil {
			s.rows = prev
			return err
		}
		return nil
	}
	return ErrSnapshotNotFound
}

func (s *FileStore) AppendEvent(_ context.Context, ev models.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.events
	events := append(append([]models.AuditEvent{}, s.events...), ev)
	if len(events) > maxEvents {
		events = events[len(events)-maxEvents:]
	}
	s.events = events
	if err := s.flush(); err != nil {
		s.events = prev
		return err
	}
	return nil
}

func (s *FileStore) Events(_ context.Context) ([]models.AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEvent{}, s.events...), nil
}

// Close flushes the store one last time.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// flush writes the whole document atomically. Callers hold s.mu.
func (s *FileStore) flush() error {
	if s.path == "" {
		return nil
	}
	doc := fileLayout{
		Name:   s.name,
		NextID: s.nextID,
		Tables: map[string][]fileRow{BackupsTable: s.rows},
		Events: s.events,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace backup store: %w", err)
	}
	return nil
}

func cloneSnapshot(s models.BackupSnapshot) models.BackupSnapshot {
	s.Data = cloneRecords(s.Data)
	return s
}

func cloneRecords(in []models.VehicleRecord) []models.VehicleRecord {
	out := make([]models.VehicleRecord, len(in))
	copy(out, in)
	return out
}
