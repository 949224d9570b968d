// Package normalize repairs raw, possibly-incomplete event records into
// canonical domain events. It never rejects input: absent or wrong-typed
// optional fields are treated as absent and defaulted, so a single malformed
// record can never break aggregation.
package normalize

import (
	"fmt"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
)

// idPrefixRunes is how many runes of the question text participate in a
// derived id. School events use the shorter prefix, pool events the longer,
// matching the ids already present in the published dataset.
const (
	schoolIDPrefixRunes = 5
	poolIDPrefixRunes   = 10
)

// RawEvent is the wire shape of an authored event. Every field is optional;
// unknown result shapes decode leniently through domain.ResultValue.
type RawEvent struct {
	ID             string                        `json:"id"`
	Question       string                        `json:"question"`
	Text           string                        `json:"text"`
	Choices        map[string]string             `json:"choices"`
	Results        map[string]domain.ResultValue `json:"results"`
	EndGameChoices []string                      `json:"end_game_choices"`
	// Older files used the camelCase key; both are accepted.
	EndGameChoicesAlt []string          `json:"endGameChoices"`
	Achievements      map[string]string `json:"achievements"`
	Contributors      []string          `json:"contributors"`
}

// Event produces a canonical event from a raw record.
//
// The derived id is deterministic: normalizing the same raw record twice
// yields the same id, so re-aggregation never duplicates entries. For school
// events the provenance is attached; for pool events prov is ignored.
func Event(raw RawEvent, eventType domain.EventType, prov domain.Provenance) domain.Event {
	e := domain.Event{
		ID:             raw.ID,
		Type:           eventType,
		Question:       raw.Question,
		Choices:        raw.Choices,
		Results:        raw.Results,
		EndGameChoices: raw.EndGameChoices,
		Achievements:   raw.Achievements,
		Contributors:   raw.Contributors,
	}

	if e.Question == "" {
		e.Question = raw.Text
	}
	if e.EndGameChoices == nil {
		e.EndGameChoices = raw.EndGameChoicesAlt
	}

	if e.Choices == nil {
		e.Choices = map[string]string{}
	}
	if e.Results == nil {
		e.Results = map[string]domain.ResultValue{}
	}
	if e.EndGameChoices == nil {
		e.EndGameChoices = []string{}
	}
	if e.Achievements == nil {
		e.Achievements = map[string]string{}
	}
	if e.Contributors == nil {
		e.Contributors = []string{}
	}

	// Every choice key must have a result entry after normalization.
	for key := range e.Choices {
		if _, ok := e.Results[key]; !ok {
			e.Results[key] = domain.ResultValue{Text: ""}
		}
	}

	if eventType.IsSchool() {
		e.School = prov.School
		e.ProvinceID = prov.ProvinceID
		e.CityID = prov.CityID
		e.SchoolID = prov.SchoolID
	}

	if e.ID == "" {
		e.ID = deriveID(e.Question, eventType, prov)
	}

	return e
}

// Normalized re-normalizes an already-canonical event. It exists for the
// fixed-point property: the output of Event passed back through is unchanged.
func Normalized(e domain.Event) domain.Event {
	return Event(RawEvent{
		ID:             e.ID,
		Question:       e.Question,
		Choices:        e.Choices,
		Results:        e.Results,
		EndGameChoices: e.EndGameChoices,
		Achievements:   e.Achievements,
		Contributors:   e.Contributors,
	}, e.Type, domain.Provenance{
		ProvinceID: e.ProvinceID,
		CityID:     e.CityID,
		SchoolID:   e.SchoolID,
		School:     e.School,
	})
}

// deriveID builds a stable identifier from provenance, category, and a
// truncated question prefix.
func deriveID(question string, eventType domain.EventType, prov domain.Provenance) string {
	switch eventType {
	case domain.EventTypeSchoolStart:
		return fmt.Sprintf("%s-start-%s", prov, runePrefix(question, schoolIDPrefixRunes))
	case domain.EventTypeSchoolSpecial:
		return fmt.Sprintf("%s-special-%s", prov, runePrefix(question, schoolIDPrefixRunes))
	case domain.EventTypeExam:
		return "exam-" + runePrefix(question, poolIDPrefixRunes)
	default:
		return "random-" + runePrefix(question, poolIDPrefixRunes)
	}
}

// runePrefix truncates on rune boundaries; question text is mostly CJK, so a
// byte slice would split characters.
func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// SchoolID fills a missing school identifier the way the dataset derives it:
// province, city, and school name joined.
func SchoolID(provinceID, cityID, schoolName string) string {
	return fmt.Sprintf("%s-%s-%s", provinceID, cityID, schoolName)
}
