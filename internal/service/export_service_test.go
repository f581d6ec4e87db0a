package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
	"github.com/tutortrack/tutortrack-api/pkg/export"
	"github.com/tutortrack/tutortrack-api/pkg/storage"
)

type staticLister struct {
	reports []models.Report
}

func (l *staticLister) List(ctx context.Context, claims *models.JWTClaims, filter Filter) ([]models.Report, error) {
	return FilterReports(l.reports, claims, filter), nil
}

func newExportService(t *testing.T, reports []models.Report) *ExportService {
	t.Helper()
	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Minute)
	return NewExportService(
		&staticLister{reports: reports},
		export.NewCSVExporter(),
		export.NewPDFExporter(""),
		artifacts,
		signer,
		ExportServiceConfig{Location: time.UTC, RetentionTTL: time.Hour},
		nil,
		zap.NewNop(),
	)
}

func TestExportEmptyViewIsNoOp(t *testing.T) {
	svc := newExportService(t, nil)

	result, err := svc.Export(context.Background(), tutorClaims("T1"), Filter{}, FormatCSV)

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestExportCSVArtifact(t *testing.T) {
	reports := []models.Report{{
		ID:          "r1",
		TutorName:   "T1",
		Date:        "2026-08-31",
		StudentName: "陳小明",
		Subject:     models.SubjectEnglish,
		Topics:      []string{"單字", "文法解析"},
		Details:     `他說:"我懂了"`,
		Timestamp:   1756617600000,
	}}
	svc := newExportService(t, reports)

	result, err := svc.Export(context.Background(), tutorClaims("T1"), Filter{}, FormatCSV)

	require.NoError(t, err)
	require.NotNil(t, result)

	text := string(result.Data)
	assert.True(t, strings.HasPrefix(text, "\uFEFF"), "artifact must carry a BOM")

	lines := strings.Split(strings.TrimPrefix(text, "\uFEFF"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "日期,導師姓名,類別,學生姓名,科目,內容重點,詳細內容,提交時間", lines[0])
	assert.Contains(t, lines[1], `"單字, 文法解析"`)
	assert.Contains(t, lines[1], `"他說:""我懂了"""`)
	// Absent category renders as the tutoring default.
	assert.Contains(t, lines[1], string(models.CategoryTutoring))
}

func TestExportFilenamePrefixes(t *testing.T) {
	reports := []models.Report{{ID: "r1", TutorName: "T1", Details: "d", Timestamp: 1}}
	svc := newExportService(t, reports)
	today := time.Now().UTC().Format("2006-01-02")

	tutorResult, err := svc.Export(context.Background(), tutorClaims("T1"), Filter{}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("tutor_reports_T1_%s.csv", today), tutorResult.Filename)

	adminResult, err := svc.Export(context.Background(), tutorClaims("admin"), Filter{}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("admin_all_reports_%s.csv", today), adminResult.Filename)
}

func TestExportRejectsUnsupportedFormat(t *testing.T) {
	svc := newExportService(t, []models.Report{{ID: "r1", TutorName: "T1"}})

	_, err := svc.Export(context.Background(), tutorClaims("T1"), Filter{}, "xlsx")

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportPDFRequiresFont(t *testing.T) {
	svc := newExportService(t, []models.Report{{ID: "r1", TutorName: "T1"}})

	_, err := svc.Export(context.Background(), tutorClaims("T1"), Filter{}, FormatPDF)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportDownloadRoundTrip(t *testing.T) {
	reports := []models.Report{{ID: "r1", TutorName: "T1", Details: "d", Timestamp: 1}}
	svc := newExportService(t, reports)

	result, err := svc.Export(context.Background(), tutorClaims("T1"), Filter{}, FormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, result.DownloadToken)

	file, filename, err := svc.Resolve(result.DownloadToken)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, result.Filename, filename)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, result.Data, data)
}

func TestResolveRejectsTamperedToken(t *testing.T) {
	svc := newExportService(t, []models.Report{{ID: "r1", TutorName: "T1", Details: "d", Timestamp: 1}})

	result, err := svc.Export(context.Background(), tutorClaims("T1"), Filter{}, FormatCSV)
	require.NoError(t, err)

	_, _, err = svc.Resolve(result.DownloadToken + "0")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
