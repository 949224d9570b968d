package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
)

// Params configures a ranked search query.
type Params struct {
	Query string             // User's search query
	Types []domain.EventType // Event types to include (empty = all)

	// Pagination
	Limit  int
	Offset int

	// Options
	Highlight bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:     20,
		Offset:    0,
		Highlight: true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single search result.
type Hit struct {
	ID         string            `json:"id"`
	Type       domain.EventType  `json:"type"`
	Score      float64           `json:"score"`
	Question   string            `json:"question"`
	School     string            `json:"school,omitempty"`
	ProvinceID string            `json:"province_id,omitempty"`
	CityID     string            `json:"city_id,omitempty"`
	EndGame    bool              `json:"end_game"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a ranked query against the index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	searchRequest.SortBy([]string{"-_score"})

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("question")
		searchRequest.Highlight.AddField("choices")
	}

	searchRequest.Fields = []string{
		"id", "type", "question", "school", "province_id", "city_id", "end_game",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if t, ok := hit.Fields["type"].(string); ok {
			h.Type = domain.EventType(t)
		}
		if q, ok := hit.Fields["question"].(string); ok {
			h.Question = q
		}
		if school, ok := hit.Fields["school"].(string); ok {
			h.School = school
		}
		if p, ok := hit.Fields["province_id"].(string); ok {
			h.ProvinceID = p
		}
		if c, ok := hit.Fields["city_id"].(string); ok {
			h.CityID = c
		}
		if eg, ok := hit.Fields["end_game"].(bool); ok {
			h.EndGame = eg
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
//
// Question matches score highest, then choice texts, then result texts. A
// fuzzy question match catches near-misses in non-CJK queries.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		questionMatch := bleve.NewMatchQuery(params.Query)
		questionMatch.SetField("question")
		questionMatch.SetBoost(3.0)
		textQueries = append(textQueries, questionMatch)

		choicesMatch := bleve.NewMatchQuery(params.Query)
		choicesMatch.SetField("choices")
		choicesMatch.SetBoost(1.5)
		textQueries = append(textQueries, choicesMatch)

		resultsMatch := bleve.NewMatchQuery(params.Query)
		resultsMatch.SetField("results")
		textQueries = append(textQueries, resultsMatch)

		schoolMatch := bleve.NewMatchQuery(params.Query)
		schoolMatch.SetField("school")
		schoolMatch.SetBoost(1.2)
		textQueries = append(textQueries, schoolMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("question")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("question")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
