package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutortrack/tutortrack-api/internal/dto"
	"github.com/tutortrack/tutortrack-api/internal/service"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
	"github.com/tutortrack/tutortrack-api/pkg/response"
)

// ExportHandler serves artifact generation and signed downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Export the current report view
// @Description Render the caller's filtered view as a downloadable artifact. An empty view yields 204.
// @Tags Exports
// @Produce text/csv
// @Param search query string false "Free-text search"
// @Param category query string false "Category filter"
// @Param subject query string false "Subject filter"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Success 204 "Empty view"
// @Security BearerAuth
// @Router /reports/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	result, err := h.service.Export(c.Request.Context(), claims, service.Filter{
		Search:   query.Search,
		Category: query.Category,
		Subject:  query.Subject,
	}, query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result == nil {
		c.Status(http.StatusNoContent)
		return
	}

	if result.DownloadToken != "" {
		c.Header("X-Export-Token", result.DownloadToken)
		c.Header("X-Export-Expires", result.ExpiresAt.UTC().Format(http.TimeFormat))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Cleanup godoc
// @Summary Remove expired export artifacts now
// @Tags Exports
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/exports/cleanup [post]
func (h *ExportHandler) Cleanup(c *gin.Context) {
	removed, err := h.service.CleanupNow()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}

// Download godoc
// @Summary Download a retained export artifact
// @Tags Exports
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, filename, err := h.service.Resolve(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
