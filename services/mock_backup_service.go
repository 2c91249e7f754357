package services

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"nilakkal-parking/models"
)

// ✅ Ensure MockBackupService implements BackupServiceInterface
var _ BackupServiceInterface = (*MockBackupService)(nil)

// MockBackupService is a mock implementation for testing and extends `mock.Mock`
type MockBackupService struct {
	mock.Mock
}

// SaveSnapshot (Mocked)
func (m *MockBackupService) SaveSnapshot(ctx context.Context, records []models.VehicleRecord) (models.BackupSnapshot, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(models.BackupSnapshot), args.Error(1)
}

// ListSnapshots (Mocked)
func (m *MockBackupService) ListSnapshots(ctx context.Context) ([]models.BackupSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.BackupSnapshot), args.Error(1)
}

// GetSnapshot (Mocked)
func (m *MockBackupService) GetSnapshot(ctx context.Context, id int64) (models.BackupSnapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.BackupSnapshot), args.Error(1)
}

// DeleteSnapshot (Mocked)
func (m *MockBackupService) DeleteSnapshot(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// RestoreSnapshot (Mocked)
func (m *MockBackupService) RestoreSnapshot(snap models.BackupSnapshot) (RestoreResult, error) {
	args := m.Called(snap)
	return args.Get(0).(RestoreResult), args.Error(1)
}

// ExportCSV (Mocked)
func (m *MockBackupService) ExportCSV(snap models.BackupSnapshot, w io.Writer) error {
	args := m.Called(snap, w)
	return args.Error(0)
}

// ExportJSON (Mocked)
func (m *MockBackupService) ExportJSON(snap models.BackupSnapshot, w io.Writer) error {
	args := m.Called(snap, w)
	return args.Error(0)
}

// ImportJSON (Mocked)
func (m *MockBackupService) ImportJSON(ctx context.Context, r io.Reader) (models.BackupSnapshot, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(models.BackupSnapshot), args.Error(1)
}
