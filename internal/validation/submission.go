package validation

import (
	"fmt"
	"math"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	domainerrors "github.com/CheongSzesuen/eventsWeb/internal/errors"
)

// probTolerance is how far weighted probabilities may drift from 1.0 before
// a submission is rejected. Hand-written fractions rarely sum exactly.
const probTolerance = 0.01

// ValidateSubmission checks an event submitted through the public form.
// Unlike the normalizer, which accepts anything, submissions must be complete
// and internally consistent before they reach the review queue.
func ValidateSubmission(e *domain.Event) error {
	fieldErrors := make(map[string]string)

	if !e.Type.Valid() {
		fieldErrors["type"] = "must be one of: exam, random, school_start, school_special"
	}
	if e.Question == "" {
		fieldErrors["question"] = "is required"
	}
	if len(e.Choices) == 0 {
		fieldErrors["choices"] = "at least one choice is required"
	}

	for key := range e.Choices {
		result, ok := e.Results[key]
		if !ok {
			fieldErrors["results"] = fmt.Sprintf("choice %q has no result", key)
			continue
		}
		if len(result.Options) > 0 {
			if err := checkWeights(key, result.Options); err != "" {
				fieldErrors["results"] = err
			}
		}
	}
	for key := range e.Results {
		if _, ok := e.Choices[key]; !ok {
			fieldErrors["results"] = fmt.Sprintf("result %q has no matching choice", key)
		}
	}

	if e.Type.IsSchool() {
		if e.School == "" {
			fieldErrors["school"] = "is required for school events"
		}
		if e.ProvinceID == "" {
			fieldErrors["province_id"] = "is required for school events"
		}
		if e.CityID == "" {
			fieldErrors["city_id"] = "is required for school events"
		}
	}

	if len(fieldErrors) > 0 {
		return domainerrors.ValidationWithDetails("submission validation failed", fieldErrors)
	}
	return nil
}

// checkWeights verifies that weighted outcome probabilities sum to 1.
func checkWeights(choiceKey string, options []domain.ResultOption) string {
	var sum float64
	for i, opt := range options {
		if opt.Prob < 0 || opt.Prob > 1 {
			return fmt.Sprintf("choice %q option %d probability must be between 0 and 1", choiceKey, i)
		}
		if opt.Text == "" {
			return fmt.Sprintf("choice %q option %d text is required", choiceKey, i)
		}
		sum += opt.Prob
	}
	if math.Abs(sum-1.0) > probTolerance {
		return fmt.Sprintf("choice %q probabilities sum to %.3f, expected 1", choiceKey, sum)
	}
	return ""
}
