package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-ledger/internal/backup"
)

// BackupHandler handles export, import and stored backup files
type BackupHandler struct {
	codec   *backup.Codec
	archive *backup.Archive
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(codec *backup.Codec, archive *backup.Archive) *BackupHandler {
	return &BackupHandler{codec: codec, archive: archive}
}

// @Summary Export all data
// @Description Save a timestamped backup file and return it as a download
// @Tags backup
// @Produce json
// @Success 200 {object} backup.Document
// @Failure 503 {object} ErrorResponse
// @Router /backup/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	info, err := h.archive.Save(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := h.archive.Read(ctx, info.Key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Key))
	c.Data(http.StatusOK, "application/json", data)
}

// @Summary Import a backup document
// @Description Append every record of the uploaded document. Import is not idempotent.
// @Tags backup
// @Accept json
// @Produce json
// @Param mode query string false "remap (default) or merge"
// @Param document body backup.Document true "Backup document"
// @Success 200 {object} backup.ImportResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "Import partially applied; details list the written counts"
// @Router /backup/import [post]
func (h *BackupHandler) Import(c *gin.Context) {
	mode, err := backup.ParseMode(c.Query("mode"))
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.codec.ImportJSON(c.Request.Context(), data, mode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary List backup files
// @Tags backup
// @Produce json
// @Success 200 {array} storage.FileInfo
// @Router /backup/files [get]
func (h *BackupHandler) ListFiles(c *gin.Context) {
	files, err := h.archive.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// @Summary Download a backup file
// @Tags backup
// @Produce json
// @Param key path string true "Backup file name"
// @Success 200 {object} backup.Document
// @Failure 404 {object} ErrorResponse
// @Router /backup/files/{key} [get]
func (h *BackupHandler) GetFile(c *gin.Context) {
	key := c.Param("key")

	data, err := h.archive.Read(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key))
	c.Data(http.StatusOK, "application/json", data)
}

// @Summary Restore a backup file
// @Description Import a stored backup file into the ledger
// @Tags backup
// @Produce json
// @Param key path string true "Backup file name"
// @Param mode query string false "remap (default) or merge"
// @Success 200 {object} backup.ImportResult
// @Failure 404 {object} ErrorResponse
// @Router /backup/files/{key}/restore [post]
func (h *BackupHandler) Restore(c *gin.Context) {
	mode, err := backup.ParseMode(c.Query("mode"))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.archive.Restore(c.Request.Context(), c.Param("key"), mode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
