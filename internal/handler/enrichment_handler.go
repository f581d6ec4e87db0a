package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutortrack/tutortrack-api/internal/dto"
	"github.com/tutortrack/tutortrack-api/internal/service"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
	"github.com/tutortrack/tutortrack-api/pkg/response"
)

// maxImportSize caps uploaded exam photos at 16 MiB.
const maxImportSize = 16 << 20

// EnrichmentHandler exposes the per-caller enrichment workflow.
type EnrichmentHandler struct {
	service *service.EnrichmentService
}

// NewEnrichmentHandler creates a new handler.
func NewEnrichmentHandler(svc *service.EnrichmentService) *EnrichmentHandler {
	return &EnrichmentHandler{service: svc}
}

// StartCapture godoc
// @Summary Acquire the capture device
// @Tags Enrichment
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /enrichment/capture [post]
func (h *EnrichmentHandler) StartCapture(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.StartCapture(c.Request.Context(), claims.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Status(claims.Name), nil)
}

// Snapshot godoc
// @Summary Freeze the current frame and release the device
// @Tags Enrichment
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /enrichment/snapshot [post]
func (h *EnrichmentHandler) Snapshot(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Snapshot(c.Request.Context(), claims.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Status(claims.Name), nil)
}

// CancelCapture godoc
// @Summary Cancel capture without retaining an image
// @Tags Enrichment
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrichment/cancel [post]
func (h *EnrichmentHandler) CancelCapture(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.service.CancelCapture(claims.Name)
	response.JSON(c, http.StatusOK, h.service.Status(claims.Name), nil)
}

// Import godoc
// @Summary Upload an exam photo instead of capturing one
// @Tags Enrichment
// @Accept multipart/form-data
// @Param image formData file true "Exam photo"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /enrichment/import [post]
func (h *EnrichmentHandler) Import(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image file is required"))
		return
	}
	if fileHeader.Size > maxImportSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image exceeds the upload limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	if err := h.service.Import(c.Request.Context(), claims.Name, file); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Status(claims.Name), nil)
}

// Analyze godoc
// @Summary Send the held image for analysis
// @Description Accepted for processing; poll status for the merged narrative.
// @Tags Enrichment
// @Accept json
// @Param payload body dto.AnalyzeRequest true "Current draft details"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /enrichment/analyze [post]
func (h *EnrichmentHandler) Analyze(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid analyze payload"))
		return
	}

	if err := h.service.Analyze(c.Request.Context(), claims.Name, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, h.service.Status(claims.Name))
}

// Discard godoc
// @Summary Drop the held image and reset the workflow
// @Tags Enrichment
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrichment/discard [post]
func (h *EnrichmentHandler) Discard(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.service.Discard(claims.Name)
	response.JSON(c, http.StatusOK, h.service.Status(claims.Name), nil)
}

// Status godoc
// @Summary Report the workflow state
// @Tags Enrichment
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrichment/status [get]
func (h *EnrichmentHandler) Status(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Status(claims.Name), nil)
}
