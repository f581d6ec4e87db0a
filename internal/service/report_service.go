package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/dto"
	"github.com/tutortrack/tutortrack-api/internal/models"
	"github.com/tutortrack/tutortrack-api/internal/repository"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
)

// minDetailsRunes is the minimum length of the narrative field, counted in
// Unicode code points so CJK text is measured the same as Latin text.
const minDetailsRunes = 30

type reportStore interface {
	Load(ctx context.Context) ([]models.Report, error)
	GetByID(ctx context.Context, id string) (*models.Report, error)
	Save(ctx context.Context, report *models.Report) error
	Update(ctx context.Context, report models.Report) error
	Remove(ctx context.Context, id string) error
}

// ReportService implements the report lifecycle: validated submission on the
// create and edit paths, deletion, and role-scoped listing.
type ReportService struct {
	store   reportStore
	query   *QueryService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(store reportStore, query *QueryService, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{store: store, query: query, metrics: metrics, logger: logger}
}

// List returns the caller's filtered view of the collection in stored order.
func (s *ReportService) List(ctx context.Context, claims *models.JWTClaims, filter Filter) ([]models.Report, error) {
	reports, err := s.store.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reports")
	}
	if s.query != nil {
		return s.query.View(ctx, reports, claims, filter), nil
	}
	return FilterReports(reports, claims, filter), nil
}

// Create validates the draft and stores it as a new record carrying the
// caller's identity and the submission time.
func (s *ReportService) Create(ctx context.Context, claims *models.JWTClaims, req dto.SubmitReportRequest) (*models.Report, error) {
	draft, err := s.buildDraft(req)
	if err != nil {
		return nil, err
	}

	report := models.Report{
		TutorName:   claims.Name,
		Date:        req.Date,
		Category:    draft.Category,
		StudentName: draft.StudentName,
		Subject:     draft.Subject,
		Topics:      draft.Topics,
		Details:     draft.Details,
		Timestamp:   time.Now().UnixMilli(),
	}

	start := time.Now()
	if err := s.store.Save(ctx, &report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save report")
	}
	s.metrics.ObserveSlotWrite(time.Since(start))

	s.invalidateViews(ctx)
	s.logger.Info("report created", zap.String("id", report.ID), zap.String("tutor", report.TutorName))
	return &report, nil
}

// Update validates the draft and overwrites an existing record, preserving
// its id, original author and creation timestamp. Tutors may only edit their
// own records.
func (s *ReportService) Update(ctx context.Context, claims *models.JWTClaims, id string, req dto.SubmitReportRequest) (*models.Report, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if !claims.IsAdmin() && existing.TutorName != claims.Name {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot modify another tutor's report")
	}

	draft, err := s.buildDraft(req)
	if err != nil {
		return nil, err
	}

	updated := models.Report{
		ID:          existing.ID,
		TutorName:   existing.TutorName,
		Date:        req.Date,
		Category:    draft.Category,
		StudentName: draft.StudentName,
		Subject:     draft.Subject,
		Topics:      draft.Topics,
		Details:     draft.Details,
		Timestamp:   existing.Timestamp,
	}

	start := time.Now()
	if err := s.store.Update(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report")
	}
	s.metrics.ObserveSlotWrite(time.Since(start))

	s.invalidateViews(ctx)
	s.logger.Info("report updated", zap.String("id", updated.ID), zap.String("tutor", claims.Name))
	return &updated, nil
}

// Delete removes the record. Deleting an id that is already gone succeeds
// silently. Tutors may only delete their own records.
func (s *ReportService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if !claims.IsAdmin() && existing.TutorName != claims.Name {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot delete another tutor's report")
	}

	start := time.Now()
	if err := s.store.Remove(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete report")
	}
	s.metrics.ObserveSlotWrite(time.Since(start))

	s.invalidateViews(ctx)
	s.logger.Info("report deleted", zap.String("id", id), zap.String("tutor", claims.Name))
	return nil
}

// reportDraft holds the normalized fields shared by the create and edit paths.
type reportDraft struct {
	Category    models.Category
	StudentName string
	Subject     models.Subject
	Topics      []string
	Details     string
}

// buildDraft normalizes and validates a submission. Validation messages are
// the user-facing strings the tutoring staff works with.
func (s *ReportService) buildDraft(req dto.SubmitReportRequest) (*reportDraft, error) {
	category := req.Category
	if category == "" {
		category = models.CategoryTutoring
	}
	if category != models.CategoryTutoring && category != models.CategoryMakeup {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid category")
	}

	studentName := strings.TrimSpace(req.StudentName)
	if studentName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "請輸入學生姓名。")
	}

	topics := make([]string, 0, len(req.Topics))
	for _, topic := range req.Topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	if len(topics) == 0 {
		kind := "教學重點"
		if category == models.CategoryMakeup {
			kind = "補課內容"
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("請至少選擇一個%s。", kind))
	}

	details := strings.TrimSpace(req.Details)
	if count := utf8.RuneCountInString(details); count < minDetailsRunes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("內容詳述不得少於 %d 字。目前字數：%d", minDetailsRunes, count))
	}

	// Makeup sessions are always English classes; the subject picker is
	// disabled for them upstream.
	subject := req.Subject
	if category == models.CategoryMakeup {
		subject = models.DefaultMakeupSubject
	} else if !models.ValidSubject(subject) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid subject")
	}

	return &reportDraft{
		Category:    category,
		StudentName: studentName,
		Subject:     subject,
		Topics:      topics,
		Details:     details,
	}, nil
}

func (s *ReportService) invalidateViews(ctx context.Context) {
	if s.query != nil {
		s.query.InvalidateViews(ctx)
	}
}
