package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data := Dataset{
		Headers: []string{"日期", "學生姓名", "詳細內容"},
		Rows: [][]string{
			{"2026-08-30", "王小明", QuoteEscape(`進度落後，需加強 "分數" 運算`)},
		},
	}

	out, err := exporter.Render(data)
	require.NoError(t, err)

	text := string(out)
	require.True(t, strings.HasPrefix(text, UTF8BOM), "artifact must carry a UTF-8 BOM")

	lines := strings.Split(strings.TrimPrefix(text, UTF8BOM), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "日期,學生姓名,詳細內容", lines[0])
	assert.Equal(t, `2026-08-30,王小明,"進度落後，需加強 ""分數"" 運算"`, lines[1])
}

func TestCSVExporterRejectsHeaderlessDataset(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVExporterRejectsRaggedRow(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"only-one"}},
	})
	require.Error(t, err)
}

func TestQuoteEscapeRoundTrip(t *testing.T) {
	original := `他說："我懂了"，之後測驗 "全對"`
	cell := QuoteEscape(original)

	unquoted := strings.TrimSuffix(strings.TrimPrefix(cell, `"`), `"`)
	restored := strings.ReplaceAll(unquoted, `""`, `"`)
	assert.Equal(t, original, restored)
}

func TestWrapDoesNotEscape(t *testing.T) {
	assert.Equal(t, `"單字, 文法解析"`, Wrap("單字, 文法解析"))
}
