package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	domainerrors "github.com/CheongSzesuen/eventsWeb/internal/errors"
)

func validEvent() *domain.Event {
	return &domain.Event{
		Type:     domain.EventTypeRandom,
		Question: "放学路上捡到十块钱",
		Choices:  map[string]string{"1": "交给警察", "2": "买辣条"},
		Results: map[string]domain.ResultValue{
			"1": {Text: "好市民"},
			"2": {Text: "真香"},
		},
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	return details
}

func TestValidateSubmission_Valid(t *testing.T) {
	assert.NoError(t, ValidateSubmission(validEvent()))
}

func TestValidateSubmission_InvalidType(t *testing.T) {
	e := validEvent()
	e.Type = "bogus"
	details := fieldErrors(t, ValidateSubmission(e))
	assert.Contains(t, details, "type")
}

func TestValidateSubmission_MissingQuestion(t *testing.T) {
	e := validEvent()
	e.Question = ""
	details := fieldErrors(t, ValidateSubmission(e))
	assert.Contains(t, details, "question")
}

func TestValidateSubmission_NoChoices(t *testing.T) {
	e := validEvent()
	e.Choices = nil
	details := fieldErrors(t, ValidateSubmission(e))
	assert.Contains(t, details, "choices")
}

func TestValidateSubmission_ChoiceWithoutResult(t *testing.T) {
	e := validEvent()
	delete(e.Results, "2")
	details := fieldErrors(t, ValidateSubmission(e))
	assert.Contains(t, details["results"], `"2"`)
}

func TestValidateSubmission_ResultWithoutChoice(t *testing.T) {
	e := validEvent()
	e.Results["3"] = domain.ResultValue{Text: "凭空出现的结局"}
	details := fieldErrors(t, ValidateSubmission(e))
	assert.Contains(t, details["results"], `"3"`)
}

func TestValidateSubmission_Weights(t *testing.T) {
	weighted := func(probs ...float64) *domain.Event {
		e := validEvent()
		opts := make([]domain.ResultOption, len(probs))
		for i, p := range probs {
			opts[i] = domain.ResultOption{Text: "结局", Prob: p}
		}
		e.Results["1"] = domain.ResultValue{Options: opts}
		return e
	}

	t.Run("sums to one", func(t *testing.T) {
		assert.NoError(t, ValidateSubmission(weighted(0.7, 0.3)))
	})

	t.Run("within tolerance", func(t *testing.T) {
		assert.NoError(t, ValidateSubmission(weighted(0.333, 0.333, 0.333)))
	})

	t.Run("sum too low", func(t *testing.T) {
		details := fieldErrors(t, ValidateSubmission(weighted(0.5, 0.3)))
		assert.Contains(t, details["results"], "sum")
	})

	t.Run("probability out of range", func(t *testing.T) {
		details := fieldErrors(t, ValidateSubmission(weighted(1.5)))
		assert.Contains(t, details["results"], "between 0 and 1")
	})

	t.Run("option without text", func(t *testing.T) {
		e := validEvent()
		e.Results["1"] = domain.ResultValue{Options: []domain.ResultOption{
			{Text: "", Prob: 1.0},
		}}
		details := fieldErrors(t, ValidateSubmission(e))
		assert.Contains(t, details["results"], "text is required")
	})
}

func TestValidateSubmission_SchoolProvenance(t *testing.T) {
	e := validEvent()
	e.Type = domain.EventTypeSchoolStart

	details := fieldErrors(t, ValidateSubmission(e))
	assert.Contains(t, details, "school")
	assert.Contains(t, details, "province_id")
	assert.Contains(t, details, "city_id")

	e.School = "实验中学"
	e.ProvinceID = "gd"
	e.CityID = "sz"
	assert.NoError(t, ValidateSubmission(e))
}

func TestValidator_StructTags(t *testing.T) {
	type request struct {
		Name  string `json:"name" validate:"required,max=10"`
		Count int    `json:"count,omitempty" validate:"gte=0"`
	}

	v := New()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(request{Name: "ok", Count: 1}))
	})

	t.Run("reports json field names", func(t *testing.T) {
		details := fieldErrors(t, v.Validate(request{Count: -1}))
		assert.Equal(t, "is required", details["name"])
		assert.Contains(t, details["count"], "greater than or equal to 0")
	})

	t.Run("max length message", func(t *testing.T) {
		details := fieldErrors(t, v.Validate(request{Name: "一二三四五六七八九十十一"}))
		assert.Contains(t, details["name"], "must not exceed 10")
	})
}
