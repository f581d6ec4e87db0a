package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveCategoryDefaultsLegacyRecords(t *testing.T) {
	assert.Equal(t, CategoryTutoring, Report{}.EffectiveCategory())
	assert.Equal(t, CategoryMakeup, Report{Category: CategoryMakeup}.EffectiveCategory())
}

func TestReportLegacyJSONFieldNames(t *testing.T) {
	report := Report{
		ID:          "abc",
		TutorName:   "王老師",
		Date:        "2026-08-31",
		StudentName: "陳小明",
		Subject:     SubjectEnglish,
		Topics:      []string{"單字"},
		Details:     "內容",
		Timestamp:   1756617600000,
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"tutorName"`)
	assert.Contains(t, text, `"studentName"`)
	assert.Contains(t, text, `"timestamp":1756617600000`)
	// Absent category stays absent, matching records written before the
	// field existed.
	assert.NotContains(t, text, `"category"`)
}

func TestReportLegacyJSONRoundTrip(t *testing.T) {
	legacy := `{"id":"a1","tutorName":"王老師","date":"2024-01-05","studentName":"陳小明","subject":"數學","topics":["觀念講解"],"details":"內容","timestamp":1704412800000}`

	var report Report
	require.NoError(t, json.Unmarshal([]byte(legacy), &report))

	assert.Empty(t, report.Category)
	assert.Equal(t, CategoryTutoring, report.EffectiveCategory())
	assert.Equal(t, SubjectMath, report.Subject)
}

func TestValidSubject(t *testing.T) {
	for _, subject := range Subjects {
		assert.True(t, ValidSubject(subject))
	}
	assert.False(t, ValidSubject("體育"))
}

func TestTopicVocabulary(t *testing.T) {
	assert.Equal(t, MakeupTopics, TopicVocabulary(CategoryMakeup, SubjectMath))
	assert.Equal(t, SubjectTopics[SubjectChinese], TopicVocabulary(CategoryTutoring, SubjectChinese))
	assert.Len(t, TopicVocabulary(CategoryTutoring, SubjectScience), 5)
}
