// Package domain contains the core entities for the events catalogue: events,
// the province/city/school hierarchy, and contribution submissions.
package domain

import (
	"encoding/json/v2"
	"fmt"
)

// EventType classifies an event by which pool or hierarchy level it belongs to.
type EventType string

// Event types.
const (
	EventTypeExam          EventType = "exam"
	EventTypeRandom        EventType = "random"
	EventTypeSchoolStart   EventType = "school_start"
	EventTypeSchoolSpecial EventType = "school_special"
)

// String returns the string representation of the event type.
func (t EventType) String() string { return string(t) }

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeExam, EventTypeRandom, EventTypeSchoolStart, EventTypeSchoolSpecial:
		return true
	}
	return false
}

// IsSchool reports whether the type carries school provenance.
func (t EventType) IsSchool() bool {
	return t == EventTypeSchoolStart || t == EventTypeSchoolSpecial
}

// ResultOption is one weighted outcome of a choice.
type ResultOption struct {
	Text        string  `json:"text"`
	Prob        float64 `json:"prob"`
	EndGame     bool    `json:"end_game,omitempty"`
	Achievement string  `json:"achievement,omitempty"`
}

// ResultValue is the outcome of picking a choice: either a plain text result
// or an ordered list of weighted options. Exactly one of Text/Options is
// meaningful; Options wins when non-nil.
type ResultValue struct {
	Text    string
	Options []ResultOption
}

// IsWeighted reports whether the result is a weighted option list.
func (r ResultValue) IsWeighted() bool { return r.Options != nil }

// HasEndGame reports whether any weighted option ends the game.
func (r ResultValue) HasEndGame() bool {
	for _, opt := range r.Options {
		if opt.EndGame {
			return true
		}
	}
	return false
}

// MarshalJSON emits either the plain string or the option array, matching the
// on-disk data format.
func (r ResultValue) MarshalJSON() ([]byte, error) {
	if r.Options != nil {
		return json.Marshal(r.Options)
	}
	return json.Marshal(r.Text)
}

// UnmarshalJSON accepts either a JSON string or an array of weighted options.
// Anything else decodes to an empty plain result rather than failing, since
// the dataset is crowd-maintained.
func (r *ResultValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Text = s
		r.Options = nil
		return nil
	}

	var opts []ResultOption
	if err := json.Unmarshal(data, &opts); err == nil {
		r.Text = ""
		r.Options = opts
		return nil
	}

	r.Text = ""
	r.Options = nil
	return nil
}

// Event is the atomic catalogue unit: one narrative question with its choices
// and outcomes. School events additionally carry provenance identifying where
// in the hierarchy they came from.
type Event struct {
	ID             string                 `json:"id"`
	Type           EventType              `json:"type"`
	Question       string                 `json:"question"`
	Choices        map[string]string      `json:"choices"`
	Results        map[string]ResultValue `json:"results"`
	EndGameChoices []string               `json:"end_game_choices"`
	Achievements   map[string]string      `json:"achievements"`
	Contributors   []string               `json:"contributors"`

	// School provenance, empty for exam/random events.
	School     string `json:"school,omitempty"`
	ProvinceID string `json:"province_id,omitempty"`
	CityID     string `json:"city_id,omitempty"`
	SchoolID   string `json:"school_id,omitempty"`
}

// HasEndGame reports whether the event can end the narrative, either via an
// explicitly flagged choice or a weighted end-game option.
func (e *Event) HasEndGame() bool {
	if len(e.EndGameChoices) > 0 {
		return true
	}
	for _, r := range e.Results {
		if r.HasEndGame() {
			return true
		}
	}
	return false
}

// Provenance identifies where in the hierarchy a school event lives.
type Provenance struct {
	ProvinceID string
	CityID     string
	SchoolID   string
	School     string // display name
}

// String renders the provenance as a path fragment for ids and logs.
func (p Provenance) String() string {
	return fmt.Sprintf("%s-%s-%s", p.ProvinceID, p.CityID, p.SchoolID)
}
