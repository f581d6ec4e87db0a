package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
)

// Filter carries the categorical and free-text criteria of a report view.
type Filter struct {
	Search   string
	Category string
	Subject  string
}

// QueryService derives role-scoped views of the report collection. Filtering
// is a pure function of the collection and the criteria; Redis only memoizes
// the derived view and is invalidated wholesale on any mutation.
type QueryService struct {
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewQueryService constructs a query service. The cache may be nil.
func NewQueryService(cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// FilterReports narrows the collection by scope, category, subject and search
// text, in that order. Every step is a conjunctive narrowing predicate, so
// stored order is preserved.
func FilterReports(reports []models.Report, claims *models.JWTClaims, filter Filter) []models.Report {
	admin := claims.IsAdmin()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]models.Report, 0, len(reports))
	for _, report := range reports {
		if !admin && report.TutorName != claims.Name {
			continue
		}
		if filter.Category != "" && string(report.EffectiveCategory()) != filter.Category {
			continue
		}
		if filter.Subject != "" && string(report.Subject) != filter.Subject {
			continue
		}
		if search != "" && !matchesSearch(report, search, admin) {
			continue
		}
		out = append(out, report)
	}
	return out
}

func matchesSearch(report models.Report, search string, admin bool) bool {
	if strings.Contains(strings.ToLower(report.StudentName), search) {
		return true
	}
	if strings.Contains(strings.ToLower(report.Details), search) {
		return true
	}
	if admin && strings.Contains(strings.ToLower(report.TutorName), search) {
		return true
	}
	return false
}

// View returns the filtered collection, serving from cache when possible.
func (s *QueryService) View(ctx context.Context, reports []models.Report, claims *models.JWTClaims, filter Filter) []models.Report {
	key := s.viewKey(claims, filter)
	if s.cache.Enabled() {
		var cached []models.Report
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached
		}
	}

	view := FilterReports(reports, claims, filter)

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, view, s.cacheTTL); err != nil {
			s.logger.Debug("failed to memoize report view", zap.Error(err))
		}
	}
	return view
}

// InvalidateViews drops every memoized view. Called after any mutation of the
// report collection.
func (s *QueryService) InvalidateViews(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, "reports:view:*"); err != nil {
		s.logger.Warn("failed to invalidate report views", zap.Error(err))
	}
}

func (s *QueryService) viewKey(claims *models.JWTClaims, filter Filter) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		claims.Name,
		string(claims.Role),
		strings.ToLower(strings.TrimSpace(filter.Search)),
		filter.Category,
		filter.Subject,
	}, "\x1f")))
	return fmt.Sprintf("reports:view:%s", hex.EncodeToString(sum[:8]))
}
