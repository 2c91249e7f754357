// File: controllers/backup_controller.go
package controllers

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"nilakkal-parking/models"
	"nilakkal-parking/services"
)

// maxImportSize caps uploaded backup files.
const maxImportSize = 10 << 20

// RosterReader supplies the live roster for manual snapshots.
type RosterReader interface {
	Records() []models.VehicleRecord
}

// ---------------- Backup Controller ----------------

// BackupController exposes the snapshot store to admins.
type BackupController struct {
	Backups services.BackupServiceInterface
	Roster  RosterReader
	AppName string
}

// NewBackupController initializes a new instance of BackupController
func NewBackupController(backups services.BackupServiceInterface, roster RosterReader, appName string) *BackupController {
	return &BackupController{Backups: backups, Roster: roster, AppName: appName}
}

func snapshotID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid snapshot id"})
		return 0, false
	}
	return id, true
}

// ListSnapshots returns every snapshot, newest first.
func (bc *BackupController) ListSnapshots(c *gin.Context) {
	snaps, err := bc.Backups.ListSnapshots(c.Request.Context())
	if err != nil {
		respondError(c, "ListSnapshots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snaps})
}

// CreateSnapshot saves the live roster.
func (bc *BackupController) CreateSnapshot(c *gin.Context) {
	snap, err := bc.Backups.SaveSnapshot(c.Request.Context(), bc.Roster.Records())
	if err != nil {
		respondError(c, "CreateSnapshot", err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// DeleteSnapshot removes a snapshot.
func (bc *BackupController) DeleteSnapshot(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}
	if err := bc.Backups.DeleteSnapshot(c.Request.Context(), id); err != nil {
		respondError(c, "DeleteSnapshot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// RestoreSnapshot replaces the live roster with a stored snapshot.
func (bc *BackupController) RestoreSnapshot(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}
	snap, err := bc.Backups.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		respondError(c, "RestoreSnapshot", err)
		return
	}
	result, err := bc.Backups.RestoreSnapshot(snap)
	if err != nil {
		respondError(c, "RestoreSnapshot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// ExportSnapshot downloads a snapshot as CSV or JSON.
func (bc *BackupController) ExportSnapshot(c *gin.Context) {
	id, ok := snapshotID(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or json"})
		return
	}
	snap, err := bc.Backups.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		respondError(c, "ExportSnapshot", err)
		return
	}

	var buf bytes.Buffer
	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
		err = bc.Backups.ExportCSV(snap, &buf)
	} else {
		err = bc.Backups.ExportJSON(snap, &buf)
	}
	if err != nil {
		respondError(c, "ExportSnapshot", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+services.ExportFilename(bc.AppName, snap, format)+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// ImportSnapshot stores an uploaded JSON backup. The file may be sent as a
// multipart "file" field or as the raw request body.
func (bc *BackupController) ImportSnapshot(c *gin.Context) {
	var body io.Reader = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	if c.ContentType() == "multipart/form-data" {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Backup file is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
			return
		}
		defer f.Close()
		body = io.LimitReader(f, maxImportSize)
	}

	snap, err := bc.Backups.ImportJSON(c.Request.Context(), body)
	if err != nil {
		respondError(c, "ImportSnapshot", err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}
