package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportHistory downloads the caller's completed sessions as a workbook
// @Summary Export test history
// @Tags tests
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /tests/history/export [get]
func (h *ExportHandler) ExportHistory(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportHistory(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("test_history_%s.xlsx", time.Now().UTC().Format("20060102"))
	h.sendWorkbook(c, filename, data)
}

// ExportSession downloads one session's answers as a workbook
// @Summary Export session
// @Tags tests
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param session_id path string true "Session ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /tests/sessions/{session_id}/export [get]
func (h *ExportHandler) ExportSession(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportSession(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendWorkbook(c, fmt.Sprintf("session_%s.xlsx", sessionID), data)
}

func (h *ExportHandler) sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
