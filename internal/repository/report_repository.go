package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	"github.com/tutortrack/tutortrack-api/pkg/storage"
)

// ErrReportNotFound is returned when an update targets an id absent from the
// stored collection.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository owns the persisted report collection. The whole collection
// lives in one slot and every mutation is a full read-modify-write; last
// writer wins, which is acceptable under the single-active-writer assumption.
type ReportRepository struct {
	slot   storage.SlotStore
	logger *zap.Logger
}

// NewReportRepository constructs the repository.
func NewReportRepository(slot storage.SlotStore, logger *zap.Logger) *ReportRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportRepository{slot: slot, logger: logger}
}

// Load reads the entire collection in stored order. An absent slot yields an
// empty collection; unreadable or corrupt data is logged and degraded to an
// empty collection rather than failing startup. Records missing an id are
// backfilled with a fresh one, and when at least one record was corrected the
// whole collection is written back before being returned, so the migration
// runs at most once per stored record.
func (r *ReportRepository) Load(ctx context.Context) ([]models.Report, error) {
	data, ok, err := r.slot.Read(ctx)
	if err != nil {
		r.logger.Error("failed to read report slot", zap.Error(err))
		return []models.Report{}, nil
	}
	if !ok || len(data) == 0 {
		return []models.Report{}, nil
	}

	var reports []models.Report
	if err := json.Unmarshal(data, &reports); err != nil {
		r.logger.Error("failed to decode stored reports", zap.Error(err))
		return []models.Report{}, nil
	}

	migrated := 0
	for i := range reports {
		if reports[i].ID == "" {
			reports[i].ID = NewReportID()
			migrated++
		}
	}
	if migrated > 0 {
		if err := r.writeAll(ctx, reports); err != nil {
			return nil, fmt.Errorf("persist id migration: %w", err)
		}
		r.logger.Info("backfilled report ids", zap.Int("count", migrated))
	}

	return reports, nil
}

// GetByID returns the stored record with the given id.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	reports, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].ID == id {
			report := reports[i]
			return &report, nil
		}
	}
	return nil, ErrReportNotFound
}

// Save assigns an id if missing, prepends the record and writes the whole
// collection back. New records therefore sit at the head (most-recent-first).
func (r *ReportRepository) Save(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = NewReportID()
	}
	reports, err := r.Load(ctx)
	if err != nil {
		return err
	}
	updated := append([]models.Report{*report}, reports...)
	return r.writeAll(ctx, updated)
}

// Update replaces the single record whose id matches, leaving all others
// untouched positionally.
func (r *ReportRepository) Update(ctx context.Context, report models.Report) error {
	reports, err := r.Load(ctx)
	if err != nil {
		return err
	}
	found := false
	for i := range reports {
		if reports[i].ID == report.ID {
			reports[i] = report
			found = true
			break
		}
	}
	if !found {
		return ErrReportNotFound
	}
	return r.writeAll(ctx, reports)
}

// Remove filters out the matching record. Removing an unknown id is a no-op.
func (r *ReportRepository) Remove(ctx context.Context, id string) error {
	reports, err := r.Load(ctx)
	if err != nil {
		return err
	}
	filtered := make([]models.Report, 0, len(reports))
	for _, report := range reports {
		if report.ID != id {
			filtered = append(filtered, report)
		}
	}
	if len(filtered) == len(reports) {
		return nil
	}
	return r.writeAll(ctx, filtered)
}

func (r *ReportRepository) writeAll(ctx context.Context, reports []models.Report) error {
	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	if err := r.slot.Write(ctx, data); err != nil {
		return fmt.Errorf("write report slot: %w", err)
	}
	return nil
}

// NewReportID produces a collision-resistant opaque token with no semantic
// structure.
func NewReportID() string {
	return uuid.NewString()
}
