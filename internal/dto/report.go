package dto

import (
	"github.com/tutortrack/tutortrack-api/internal/models"
)

// SubmitReportRequest is the payload for both the create and edit paths.
type SubmitReportRequest struct {
	Date        string          `json:"date" validate:"required"`
	Category    models.Category `json:"category"`
	StudentName string          `json:"studentName"`
	Subject     models.Subject  `json:"subject"`
	Topics      []string        `json:"topics"`
	Details     string          `json:"details"`
}

// ReportListQuery captures the derived-view inputs coming from the client.
type ReportListQuery struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Subject  string `form:"subject"`
}

// ReportListResponse wraps the filtered view.
type ReportListResponse struct {
	Reports []models.Report `json:"reports"`
	Total   int             `json:"total"`
}

// ExportQuery extends the list query with the artifact format.
type ExportQuery struct {
	ReportListQuery
	Format string `form:"format"`
}
