package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
	"github.com/tutortrack/tutortrack-api/pkg/export"
	"github.com/tutortrack/tutortrack-api/pkg/storage"
)

// exportHeaders is the fixed column order of the report artifact.
var exportHeaders = []string{"日期", "導師姓名", "類別", "學生姓名", "科目", "內容重點", "詳細內容", "提交時間"}

const (
	// FormatCSV is the legacy spreadsheet artifact.
	FormatCSV = "csv"
	// FormatPDF is a printable rendering, available when a CJK font is configured.
	FormatPDF = "pdf"

	adminExportPrefix = "admin_all_reports"
	tutorExportPrefix = "tutor_reports_"
)

type reportLister interface {
	List(ctx context.Context, claims *models.JWTClaims, filter Filter) ([]models.Report, error)
}

// ExportResult describes a materialized artifact and its download token.
type ExportResult struct {
	Filename      string    `json:"filename"`
	ContentType   string    `json:"content_type"`
	Data          []byte    `json:"-"`
	DownloadToken string    `json:"download_token"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ExportService materializes the caller's filtered view into downloadable
// artifacts and retains them for later download via signed tokens.
type ExportService struct {
	lister    reportLister
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	artifacts *storage.LocalStorage
	signer    *storage.SignedURLSigner
	location  *time.Location
	retention time.Duration
	interval  time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
}

// ExportServiceConfig wires retention and rendering settings.
type ExportServiceConfig struct {
	Location        *time.Location
	RetentionTTL    time.Duration
	CleanupInterval time.Duration
}

// NewExportService constructs an ExportService instance.
func NewExportService(lister reportLister, csv *export.CSVExporter, pdf *export.PDFExporter,
	artifacts *storage.LocalStorage, signer *storage.SignedURLSigner,
	cfg ExportServiceConfig, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	return &ExportService{
		lister:    lister,
		csv:       csv,
		pdf:       pdf,
		artifacts: artifacts,
		signer:    signer,
		location:  cfg.Location,
		retention: cfg.RetentionTTL,
		interval:  cfg.CleanupInterval,
		metrics:   metrics,
		logger:    logger,
	}
}

// Export renders the caller's current view into an artifact. An empty view
// produces no artifact and no error; the caller receives nil.
func (s *ExportService) Export(ctx context.Context, claims *models.JWTClaims, filter Filter, format string) (*ExportResult, error) {
	if format == "" {
		format = FormatCSV
	}

	reports, err := s.lister.List(ctx, claims, filter)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}

	dataset := s.buildDataset(reports)
	filename := fmt.Sprintf("%s_%s.%s", s.exportPrefix(claims), time.Now().In(s.location).Format("2006-01-02"), format)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case FormatCSV:
		data, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case FormatPDF:
		if !s.pdf.Supported() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "pdf export requires a configured font")
		}
		data, err = s.pdf.Render(dataset, "輔導紀錄")
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	result := &ExportResult{Filename: filename, ContentType: contentType, Data: data}

	if s.artifacts != nil && s.signer != nil {
		exportID := uuid.NewString()
		stored := exportID + "_" + filename
		if _, err := s.artifacts.Save(stored, data); err != nil {
			s.logger.Warn("failed to retain export artifact", zap.Error(err))
		} else if token, expiresAt, err := s.signer.Generate(exportID, stored); err != nil {
			s.logger.Warn("failed to sign export token", zap.Error(err))
		} else {
			result.DownloadToken = token
			result.ExpiresAt = expiresAt
		}
	}

	s.metrics.RecordExport(format)
	s.logger.Info("report export generated",
		zap.String("filename", filename),
		zap.String("format", format),
		zap.Int("rows", len(reports)))
	return result, nil
}

// Resolve validates a download token and opens the retained artifact.
func (s *ExportService) Resolve(token string) (*os.File, string, error) {
	if s.artifacts == nil || s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export retention is disabled")
	}
	exportID, stored, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	file, err := s.artifacts.Open(stored)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export artifact no longer available")
	}
	return file, strings.TrimPrefix(stored, exportID+"_"), nil
}

// CleanupNow removes artifacts past the retention window immediately and
// returns how many were deleted.
func (s *ExportService) CleanupNow() (int, error) {
	if s.artifacts == nil || s.retention <= 0 {
		return 0, nil
	}
	removed, err := s.artifacts.CleanupOlderThan(s.retention)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clean up export artifacts")
	}
	return len(removed), nil
}

// RunCleanup deletes retained artifacts past their retention window until the
// context is cancelled.
func (s *ExportService) RunCleanup(ctx context.Context) {
	if s.artifacts == nil || s.retention <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.artifacts.CleanupOlderThan(s.retention)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("expired export artifacts removed", zap.Int("count", len(removed)))
			}
		}
	}
}

func (s *ExportService) exportPrefix(claims *models.JWTClaims) string {
	if claims.IsAdmin() {
		return adminExportPrefix
	}
	return tutorExportPrefix + claims.Name
}

func (s *ExportService) buildDataset(reports []models.Report) export.Dataset {
	rows := make([][]string, 0, len(reports))
	for _, report := range reports {
		rows = append(rows, []string{
			report.Date,
			report.TutorName,
			string(report.EffectiveCategory()),
			report.StudentName,
			string(report.Subject),
			export.Wrap(strings.Join(report.Topics, ", ")),
			export.QuoteEscape(report.Details),
			s.formatTimestamp(report.Timestamp),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func (s *ExportService) formatTimestamp(millis int64) string {
	return time.UnixMilli(millis).In(s.location).Format("2006/01/02 15:04:05")
}
