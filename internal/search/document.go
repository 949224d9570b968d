// Package search provides full-text search over the event corpus using
// Bleve. It powers the ranked search endpoint with fuzzy matching and type
// filtering; the exact substring contract used for programmatic filtering
// lives in the catalog service instead.
package search

import (
	"strings"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
)

// EventDocument is the indexed shape of one event. Choice and result texts
// are denormalized into flat fields so a single query spans everything a
// reader sees on an event card.
type EventDocument struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Question     string `json:"question"`
	Choices      string `json:"choices"`
	Results      string `json:"results"`
	School       string `json:"school,omitempty"`
	ProvinceID   string `json:"province_id,omitempty"`
	CityID       string `json:"city_id,omitempty"`
	Contributors string `json:"contributors,omitempty"`
	EndGame      bool   `json:"end_game"`
}

// ToMap converts the document to a map with lowercase field names matching
// the index mapping.
func (d *EventDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":       d.ID,
		"type":     d.Type,
		"question": d.Question,
		"end_game": d.EndGame,
	}
	if d.Choices != "" {
		m["choices"] = d.Choices
	}
	if d.Results != "" {
		m["results"] = d.Results
	}
	if d.School != "" {
		m["school"] = d.School
	}
	if d.ProvinceID != "" {
		m["province_id"] = d.ProvinceID
	}
	if d.CityID != "" {
		m["city_id"] = d.CityID
	}
	if d.Contributors != "" {
		m["contributors"] = d.Contributors
	}
	return m
}

// EventToDocument converts a normalized domain event to its indexed form.
func EventToDocument(e *domain.Event) *EventDocument {
	var choices strings.Builder
	for _, text := range e.Choices {
		if choices.Len() > 0 {
			choices.WriteByte(' ')
		}
		choices.WriteString(text)
	}

	var results strings.Builder
	for _, r := range e.Results {
		appendResultText(&results, r)
	}

	return &EventDocument{
		ID:           e.ID,
		Type:         string(e.Type),
		Question:     e.Question,
		Choices:      choices.String(),
		Results:      results.String(),
		School:       e.School,
		ProvinceID:   e.ProvinceID,
		CityID:       e.CityID,
		Contributors: strings.Join(e.Contributors, " "),
		EndGame:      e.HasEndGame(),
	}
}

func appendResultText(b *strings.Builder, r domain.ResultValue) {
	if r.Options == nil {
		if r.Text != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(r.Text)
		}
		return
	}
	for _, opt := range r.Options {
		if opt.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(opt.Text)
	}
}
