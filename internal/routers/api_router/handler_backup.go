package api_router

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/app"
	pkgapp "github.com/haierkeys/markdown-workspace-service/pkg/app"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"
	apperrors "github.com/haierkeys/markdown-workspace-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// BackupHandler serves full backup archives, restores and the snapshot
// listing.
type BackupHandler struct {
	*Handler
}

func NewBackupHandler(a *app.App) *BackupHandler {
	return &BackupHandler{Handler: NewHandler(a)}
}

// Download streams a freshly created backup archive.
func (h *BackupHandler) Download(c *gin.Context) {
	archive, meta, err := h.App.BackupService.Create(c.Request.Context())
	if err != nil {
		h.logError("BackupHandler.Download", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	name := fmt.Sprintf("backup-%s.zip", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("X-Backup-Files", fmt.Sprintf("%d", meta.FileCount))
	c.Data(http.StatusOK, "application/zip", archive)
}

// Restore replaces the whole workspace with an uploaded archive. The
// archive is validated before anything is touched.
func (h *BackupHandler) Restore(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	archive, err := readUpload(c, "archive")
	if err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	meta, err := h.App.BackupService.Restore(c.Request.Context(), archive)
	if err != nil {
		h.logError("BackupHandler.Restore", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessRestore.WithData(meta))
}

// Snapshots lists the scheduled backup archives on disk, newest first.
func (h *BackupHandler) Snapshots(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	snapshots, err := h.App.BackupService.ListSnapshots(c.Request.Context())
	if err != nil {
		h.logError("BackupHandler.Snapshots", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponseList(code.Success, snapshots, len(snapshots))
}

// CreateSnapshot writes a snapshot archive now, outside the schedule.
func (h *BackupHandler) CreateSnapshot(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	path, err := h.App.BackupService.CreateSnapshot(c.Request.Context())
	if err != nil {
		h.logError("BackupHandler.CreateSnapshot", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(gin.H{"path": path}))
}

// readUpload reads one multipart file field; a raw request body is
// accepted as a fallback.
func readUpload(c *gin.Context, field string) ([]byte, error) {
	if file, err := c.FormFile(field); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}
