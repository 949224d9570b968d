package catalog

import (
	"context"
	"strings"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
)

// endGameMarker is the phrase the game shows for run-ending outcomes.
// Searching for it finds every event that can end a run.
const endGameMarker = "游戏结束"

// Search returns every event matching the query as a case-insensitive
// substring of its question, choice texts, or result texts, plus exact
// choice-key matches. A blank query returns no results.
func (c *Catalog) Search(ctx context.Context, query string) ([]domain.Event, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Event{}, nil
	}
	query = strings.ToLower(query)

	corpus, err := c.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	matched := []domain.Event{}
	for _, e := range corpus.AllEvents() {
		if eventMatches(&e, query) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// contains is a case-insensitive substring check; query is pre-lowered.
func contains(s, query string) bool {
	return strings.Contains(strings.ToLower(s), query)
}

func eventMatches(e *domain.Event, query string) bool {
	if contains(e.Question, query) {
		return true
	}

	for key, text := range e.Choices {
		// Choice keys are single characters; only an exact match counts.
		if strings.ToLower(key) == query {
			return true
		}
		if contains(text, query) {
			return true
		}
	}

	for _, result := range e.Results {
		if resultMatches(result, query) {
			return true
		}
	}

	// The end-game marker is display text, not data, so match it against
	// the event's semantics.
	if strings.Contains(endGameMarker, query) && e.HasEndGame() {
		return true
	}

	return false
}

func resultMatches(r domain.ResultValue, query string) bool {
	if r.Options == nil {
		return contains(r.Text, query)
	}
	for _, opt := range r.Options {
		if contains(opt.Text, query) {
			return true
		}
		if opt.Achievement != "" && contains(opt.Achievement, query) {
			return true
		}
	}
	return false
}
