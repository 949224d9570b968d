package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
)

func TestEvent_DefaultsEmptyContainers(t *testing.T) {
	e := Event(RawEvent{Question: "考试开始了"}, domain.EventTypeExam, domain.Provenance{})

	assert.NotNil(t, e.Choices)
	assert.NotNil(t, e.Results)
	assert.NotNil(t, e.EndGameChoices)
	assert.NotNil(t, e.Achievements)
	assert.NotNil(t, e.Contributors)
	assert.Empty(t, e.Choices)
	assert.Equal(t, domain.EventTypeExam, e.Type)
}

func TestEvent_FillsMissingResults(t *testing.T) {
	e := Event(RawEvent{
		Question: "要不要回答问题",
		Choices:  map[string]string{"1": "回答", "2": "沉默"},
		Results:  map[string]domain.ResultValue{"1": {Text: "老师点头"}},
	}, domain.EventTypeRandom, domain.Provenance{})

	// Every choice key must have a result entry after normalization.
	for key := range e.Choices {
		result, ok := e.Results[key]
		require.True(t, ok, "choice %q has no result", key)
		if key == "2" {
			assert.Equal(t, "", result.Text)
		}
	}
}

func TestEvent_QuestionFallsBackToText(t *testing.T) {
	e := Event(RawEvent{Text: "旧格式的事件"}, domain.EventTypeRandom, domain.Provenance{})
	assert.Equal(t, "旧格式的事件", e.Question)
}

func TestEvent_AcceptsLegacyEndGameKey(t *testing.T) {
	e := Event(RawEvent{
		Question:          "结局事件",
		EndGameChoicesAlt: []string{"1"},
	}, domain.EventTypeRandom, domain.Provenance{})

	assert.Equal(t, []string{"1"}, e.EndGameChoices)
	assert.True(t, e.HasEndGame())
}

func TestEvent_SchoolProvenance(t *testing.T) {
	prov := domain.Provenance{
		ProvinceID: "gd",
		CityID:     "sz",
		SchoolID:   "gd-sz-实验中学",
		School:     "实验中学",
	}
	e := Event(RawEvent{Question: "开学第一天"}, domain.EventTypeSchoolStart, prov)

	assert.Equal(t, "实验中学", e.School)
	assert.Equal(t, "gd", e.ProvinceID)
	assert.Equal(t, "sz", e.CityID)
	assert.Equal(t, "gd-sz-实验中学", e.SchoolID)
}

func TestEvent_PoolEventsIgnoreProvenance(t *testing.T) {
	prov := domain.Provenance{ProvinceID: "gd", CityID: "sz", School: "实验中学"}
	e := Event(RawEvent{Question: "考试"}, domain.EventTypeExam, prov)

	assert.Empty(t, e.School)
	assert.Empty(t, e.ProvinceID)
	assert.Empty(t, e.CityID)
}

func TestEvent_DerivedIDDeterministic(t *testing.T) {
	raw := RawEvent{Question: "开学第一天你迟到了怎么办"}
	prov := domain.Provenance{ProvinceID: "gd", CityID: "sz", SchoolID: "yizhong", School: "一中"}

	a := Event(raw, domain.EventTypeSchoolStart, prov)
	b := Event(raw, domain.EventTypeSchoolStart, prov)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "gd-sz-yizhong-start-开学第一天", a.ID)
}

func TestEvent_DerivedIDPoolPrefix(t *testing.T) {
	e := Event(RawEvent{Question: "考试的时候你发现同桌在抄你的答案"}, domain.EventTypeExam, domain.Provenance{})
	assert.Equal(t, "exam-考试的时候你发现同桌", e.ID)

	r := Event(RawEvent{Question: "短"}, domain.EventTypeRandom, domain.Provenance{})
	assert.Equal(t, "random-短", r.ID)
}

func TestEvent_ExplicitIDPreserved(t *testing.T) {
	e := Event(RawEvent{ID: "exam-custom", Question: "问题"}, domain.EventTypeExam, domain.Provenance{})
	assert.Equal(t, "exam-custom", e.ID)
}

func TestNormalized_FixedPoint(t *testing.T) {
	raw := RawEvent{
		Question: "要不要参加社团",
		Choices:  map[string]string{"1": "参加", "2": "不参加"},
		Results: map[string]domain.ResultValue{
			"1": {Options: []domain.ResultOption{
				{Text: "交到朋友", Prob: 0.7},
				{Text: "太累退出", Prob: 0.3, EndGame: true},
			}},
		},
	}
	prov := domain.Provenance{ProvinceID: "gd", CityID: "sz", SchoolID: "gd-sz-一中", School: "一中"}

	once := Event(raw, domain.EventTypeSchoolSpecial, prov)
	twice := Normalized(once)

	assert.Equal(t, once, twice, "normalizing a normalized event must be a no-op")
}

func TestRunePrefix_CJKSafe(t *testing.T) {
	assert.Equal(t, "开学第一天", runePrefix("开学第一天你迟到了", 5))
	assert.Equal(t, "abc", runePrefix("abc", 5))
	assert.Equal(t, "", runePrefix("", 5))
}

func TestSchoolID(t *testing.T) {
	assert.Equal(t, "gd-sz-实验中学", SchoolID("gd", "sz", "实验中学"))
}
