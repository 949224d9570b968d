package domain

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType(t *testing.T) {
	assert.True(t, EventTypeExam.Valid())
	assert.True(t, EventTypeRandom.Valid())
	assert.True(t, EventTypeSchoolStart.Valid())
	assert.True(t, EventTypeSchoolSpecial.Valid())
	assert.False(t, EventType("bogus").Valid())
	assert.False(t, EventType("").Valid())

	assert.True(t, EventTypeSchoolStart.IsSchool())
	assert.True(t, EventTypeSchoolSpecial.IsSchool())
	assert.False(t, EventTypeExam.IsSchool())
	assert.False(t, EventTypeRandom.IsSchool())
}

func TestResultValue_UnmarshalString(t *testing.T) {
	var r ResultValue
	require.NoError(t, json.Unmarshal([]byte(`"你成功了"`), &r))
	assert.Equal(t, "你成功了", r.Text)
	assert.False(t, r.IsWeighted())
}

func TestResultValue_UnmarshalOptions(t *testing.T) {
	var r ResultValue
	data := `[{"text": "全场鼓掌", "prob": 0.7}, {"text": "忘词了", "prob": 0.3, "end_game": true, "achievement": "社死现场"}]`
	require.NoError(t, json.Unmarshal([]byte(data), &r))

	assert.True(t, r.IsWeighted())
	require.Len(t, r.Options, 2)
	assert.Equal(t, "全场鼓掌", r.Options[0].Text)
	assert.InDelta(t, 0.7, r.Options[0].Prob, 1e-9)
	assert.True(t, r.Options[1].EndGame)
	assert.Equal(t, "社死现场", r.Options[1].Achievement)
}

func TestResultValue_UnmarshalGarbageDegradesToEmpty(t *testing.T) {
	var r ResultValue
	require.NoError(t, json.Unmarshal([]byte(`{"unexpected": "object"}`), &r))
	assert.Equal(t, "", r.Text)
	assert.Nil(t, r.Options)
}

func TestResultValue_MarshalRoundTrip(t *testing.T) {
	plain := ResultValue{Text: "好市民"}
	data, err := json.Marshal(plain)
	require.NoError(t, err)
	assert.JSONEq(t, `"好市民"`, string(data))

	weighted := ResultValue{Options: []ResultOption{{Text: "真香", Prob: 1}}}
	data, err = json.Marshal(weighted)
	require.NoError(t, err)

	var back ResultValue
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.IsWeighted())
	assert.Equal(t, "真香", back.Options[0].Text)
}

func TestResultValue_HasEndGame(t *testing.T) {
	assert.False(t, ResultValue{Text: "平安无事"}.HasEndGame())
	assert.False(t, ResultValue{Options: []ResultOption{{Text: "没事", Prob: 1}}}.HasEndGame())
	assert.True(t, ResultValue{Options: []ResultOption{{Text: "完了", Prob: 1, EndGame: true}}}.HasEndGame())
}

func TestEvent_HasEndGame(t *testing.T) {
	t.Run("no end game", func(t *testing.T) {
		e := Event{Results: map[string]ResultValue{"1": {Text: "没事"}}}
		assert.False(t, e.HasEndGame())
	})

	t.Run("flagged choice", func(t *testing.T) {
		e := Event{EndGameChoices: []string{"2"}}
		assert.True(t, e.HasEndGame())
	})

	t.Run("weighted option", func(t *testing.T) {
		e := Event{Results: map[string]ResultValue{
			"1": {Options: []ResultOption{{Text: "完了", Prob: 1, EndGame: true}}},
		}}
		assert.True(t, e.HasEndGame())
	})
}

func TestProvenance_String(t *testing.T) {
	p := Provenance{ProvinceID: "gd", CityID: "sz", SchoolID: "yizhong", School: "第一中学"}
	assert.Equal(t, "gd-sz-yizhong", p.String())
}

func TestCorpus_AllEvents(t *testing.T) {
	c := Corpus{
		SchoolEvents: []Event{{ID: "s1"}, {ID: "s2"}},
		ExamEvents:   []Event{{ID: "e1"}},
		RandomEvents: []Event{{ID: "r1"}},
	}

	all := c.AllEvents()
	require.Len(t, all, 4)
	assert.Equal(t, "s1", all[0].ID)
	assert.Equal(t, "s2", all[1].ID)
	assert.Equal(t, "e1", all[2].ID)
	assert.Equal(t, "r1", all[3].ID)
}

func TestSchoolData_EventCount(t *testing.T) {
	s := SchoolData{StartCount: 2, SpecialCount: 3}
	assert.Equal(t, 5, s.EventCount())
}
