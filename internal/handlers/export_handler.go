package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "billetera/internal/errors"
	"billetera/internal/services"
)

// maxImportSize caps the accepted backup payload at 10 MiB.
const maxImportSize = 10 << 20

// ExportHandler handles backup export and import requests.
type ExportHandler struct {
	exportService services.ExportServicer
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService services.ExportServicer) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export downloads the user's data as a versioned JSON document
// @Summary     Export backup
// @Description Download all of the user's data as a versioned JSON backup
// @Tags        backup
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.BackupDocument "Backup document"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	doc, err := h.exportService.Export(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="billetera-backup.json"`)
	c.JSON(http.StatusOK, doc)
}

// Import restores the user's data from a versioned JSON document
// @Summary     Import backup
// @Description Validate and restore a backup document; sections present in the document replace existing data
// @Tags        backup
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body services.BackupDocument true "Backup document"
// @Success     200 {object} MessageResponse "Backup restored"
// @Failure     400 {object} ErrorResponse "Unsupported version or invalid format"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /import [post]
func (h *ExportHandler) Import(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}

	if err := h.exportService.Import(userID, raw); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Backup restored successfully"})
}
