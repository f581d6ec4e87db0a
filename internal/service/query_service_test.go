package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutortrack/tutortrack-api/internal/models"
)

func tutorClaims(name string) *models.JWTClaims {
	return &models.JWTClaims{Name: name, Role: models.RoleForIdentity(name)}
}

func sampleReports() []models.Report {
	return []models.Report{
		{ID: "1", TutorName: "T1", StudentName: "陳小明", Subject: models.SubjectEnglish, Category: models.CategoryTutoring, Details: "單字量不足，需要加強"},
		{ID: "2", TutorName: "T1", StudentName: "林小華", Subject: models.SubjectMath, Details: "計算粗心"},
		{ID: "3", TutorName: "T2", StudentName: "張小美", Subject: models.SubjectEnglish, Category: models.CategoryMakeup, Details: "補課文法"},
	}
}

func TestFilterReportsScopesTutors(t *testing.T) {
	view := FilterReports(sampleReports(), tutorClaims("T1"), Filter{})

	require.Len(t, view, 2)
	for _, report := range view {
		assert.Equal(t, "T1", report.TutorName)
	}
}

func TestFilterReportsAdminSeesAll(t *testing.T) {
	view := FilterReports(sampleReports(), tutorClaims("admin"), Filter{})

	assert.Len(t, view, 3)
}

func TestFilterReportsCategoryNormalizesLegacyRecords(t *testing.T) {
	// Record 2 has no stored category and must count as tutoring.
	view := FilterReports(sampleReports(), tutorClaims("admin"), Filter{Category: string(models.CategoryTutoring)})

	require.Len(t, view, 2)
	assert.Equal(t, "1", view[0].ID)
	assert.Equal(t, "2", view[1].ID)
}

func TestFilterReportsSubject(t *testing.T) {
	view := FilterReports(sampleReports(), tutorClaims("admin"), Filter{Subject: string(models.SubjectEnglish)})

	require.Len(t, view, 2)
	assert.Equal(t, "1", view[0].ID)
	assert.Equal(t, "3", view[1].ID)
}

func TestFilterReportsSearchFields(t *testing.T) {
	reports := sampleReports()

	byStudent := FilterReports(reports, tutorClaims("admin"), Filter{Search: "小美"})
	require.Len(t, byStudent, 1)
	assert.Equal(t, "3", byStudent[0].ID)

	byDetails := FilterReports(reports, tutorClaims("admin"), Filter{Search: "  粗心 "})
	require.Len(t, byDetails, 1)
	assert.Equal(t, "2", byDetails[0].ID)
}

func TestFilterReportsTutorNameSearchIsAdminOnly(t *testing.T) {
	reports := sampleReports()

	admin := FilterReports(reports, tutorClaims("admin"), Filter{Search: "t2"})
	require.Len(t, admin, 1)
	assert.Equal(t, "3", admin[0].ID)

	// The same term from T2 matches no record: scoping already restricts to
	// T2's records and the term appears in none of their searchable fields.
	tutor := FilterReports(reports, tutorClaims("T2"), Filter{Search: "t2"})
	assert.Empty(t, tutor)
}

func TestFilterReportsConjunctive(t *testing.T) {
	view := FilterReports(sampleReports(), tutorClaims("admin"), Filter{
		Category: string(models.CategoryTutoring),
		Subject:  string(models.SubjectEnglish),
		Search:   "單字",
	})

	require.Len(t, view, 1)
	assert.Equal(t, "1", view[0].ID)
}

func TestFilterReportsPreservesStoredOrder(t *testing.T) {
	view := FilterReports(sampleReports(), tutorClaims("T1"), Filter{})

	require.Len(t, view, 2)
	assert.Equal(t, "1", view[0].ID)
	assert.Equal(t, "2", view[1].ID)
}
