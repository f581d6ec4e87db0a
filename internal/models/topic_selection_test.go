package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTopicSelectionClassifiesCustomEntries(t *testing.T) {
	sel := NewTopicSelection([]string{"單字", "自備講義"}, CategoryTutoring, SubjectEnglish)

	assert.Equal(t, []string{"單字", "自備講義"}, sel.Chosen)
	assert.Equal(t, []string{"自備講義"}, sel.Custom)
}

func TestTopicSelectionToggle(t *testing.T) {
	sel := TopicSelection{}

	sel = sel.Toggle("單字")
	sel = sel.Toggle("文法解析")
	assert.Equal(t, []string{"單字", "文法解析"}, sel.Chosen)

	sel = sel.Toggle("單字")
	assert.Equal(t, []string{"文法解析"}, sel.Chosen)
	assert.False(t, sel.Contains("單字"))
	assert.True(t, sel.Contains("文法解析"))
}

func TestTopicSelectionToggleDoesNotMutateReceiver(t *testing.T) {
	sel := TopicSelection{Chosen: []string{"單字"}}

	_ = sel.Toggle("文法解析")

	assert.Equal(t, []string{"單字"}, sel.Chosen)
}

func TestTopicSelectionAddCustom(t *testing.T) {
	sel := TopicSelection{Chosen: []string{"單字"}}

	sel = sel.AddCustom("自備講義")
	assert.Equal(t, []string{"單字", "自備講義"}, sel.Chosen)
	assert.Equal(t, []string{"自備講義"}, sel.Custom)

	same := sel.AddCustom("")
	assert.Equal(t, sel, same)
}

func TestTopicSelectionReset(t *testing.T) {
	sel := TopicSelection{Chosen: []string{"單字"}, Custom: []string{"自備講義"}}

	assert.Equal(t, TopicSelection{}, sel.Reset())
}
