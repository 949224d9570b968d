package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
)

func testEvents() []domain.Event {
	return []domain.Event{
		{
			ID:       "gd-sz-yizhong-start-开学第一天",
			Type:     domain.EventTypeSchoolStart,
			Question: "开学第一天你迟到了怎么办",
			Choices:  map[string]string{"1": "翻墙进去", "2": "从正门硬闯"},
			Results: map[string]domain.ResultValue{
				"1": {Text: "你成功了"},
				"2": {Text: "被教导主任抓住"},
			},
			EndGameChoices: []string{"2"},
			School:         "第一中学",
			ProvinceID:     "gd",
			CityID:         "sz",
		},
		{
			ID:       "exam-考试时你发",
			Type:     domain.EventTypeExam,
			Question: "考试时你发现忘带笔",
			Choices:  map[string]string{"1": "找同学借"},
			Results: map[string]domain.ResultValue{
				"1": {Text: "同学借给你了"},
			},
		},
		{
			ID:       "random-放学路上捡",
			Type:     domain.EventTypeRandom,
			Question: "放学路上捡到十块钱",
			Choices:  map[string]string{"1": "交给警察"},
			Results: map[string]domain.ResultValue{
				"1": {Options: []domain.ResultOption{
					{Text: "警察表扬了你", Prob: 0.9},
					{Text: "失主找上门", Prob: 0.1},
				}},
			},
		},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewMemIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	require.NoError(t, idx.IndexEvents(testEvents()))
	return idx
}

func TestIndexAndCount(t *testing.T) {
	idx := newTestIndex(t)

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearch_QuestionMatch(t *testing.T) {
	idx := newTestIndex(t)

	params := DefaultParams()
	params.Query = "迟到"
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	top := result.Hits[0]
	assert.Equal(t, "gd-sz-yizhong-start-开学第一天", top.ID)
	assert.Equal(t, domain.EventTypeSchoolStart, top.Type)
	assert.Equal(t, "开学第一天你迟到了怎么办", top.Question)
	assert.Equal(t, "第一中学", top.School)
	assert.Equal(t, "gd", top.ProvinceID)
	assert.Equal(t, "sz", top.CityID)
	assert.True(t, top.EndGame)
}

func TestSearch_ChoiceTextMatch(t *testing.T) {
	idx := newTestIndex(t)

	params := DefaultParams()
	params.Query = "翻墙"
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "gd-sz-yizhong-start-开学第一天", result.Hits[0].ID)
}

func TestSearch_WeightedResultTextMatch(t *testing.T) {
	idx := newTestIndex(t)

	params := DefaultParams()
	params.Query = "失主"
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "random-放学路上捡", result.Hits[0].ID)
}

func TestSearch_TypeFilter(t *testing.T) {
	idx := newTestIndex(t)

	params := DefaultParams()
	params.Query = "同学"
	params.Types = []domain.EventType{domain.EventTypeExam}
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, domain.EventTypeExam, result.Hits[0].Type)
}

func TestSearch_TypeFilterOnly(t *testing.T) {
	idx := newTestIndex(t)

	// No text query, just a type filter.
	params := DefaultParams()
	params.Types = []domain.EventType{domain.EventTypeSchoolStart, domain.EventTypeRandom}
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), result.Total)
}

func TestSearch_Highlighting(t *testing.T) {
	idx := newTestIndex(t)

	params := DefaultParams()
	params.Query = "迟到"
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Contains(t, result.Hits[0].Highlights, "question")
}

func TestSearch_Pagination(t *testing.T) {
	idx := newTestIndex(t)

	params := DefaultParams()
	params.Limit = 2
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Total)
	assert.Len(t, result.Hits, 2)

	params.Offset = 2
	result, err = idx.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)
}

func TestSearch_NoMatches(t *testing.T) {
	idx := newTestIndex(t)

	params := DefaultParams()
	params.Query = "银河系漫游指南"
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.Total)
	assert.Empty(t, result.Hits)
}

func TestReplaceAll(t *testing.T) {
	idx := newTestIndex(t)

	replacement := []domain.Event{
		{
			ID:       "exam-新题目",
			Type:     domain.EventTypeExam,
			Question: "新的考试题目出现了",
			Choices:  map[string]string{"1": "认真作答"},
			Results:  map[string]domain.ResultValue{"1": {Text: "满分"}},
		},
	}
	require.NoError(t, idx.ReplaceAll(replacement))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	params := DefaultParams()
	params.Query = "迟到"
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestReplaceAll_Empty(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.ReplaceAll(nil))
	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
