package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	"github.com/CheongSzesuen/eventsWeb/internal/http/response"
	"github.com/CheongSzesuen/eventsWeb/internal/search"
)

// handleSearch serves event search. The default mode is ranked full-text
// search over the index; exact=true switches to literal substring matching
// against the corpus, which is what the in-game search box does.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	queryStr := q.Get("q")

	if q.Get("exact") == "true" {
		events, err := s.catalog.Search(r.Context(), queryStr)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		response.Success(w, map[string]any{
			"query":  queryStr,
			"total":  len(events),
			"events": events,
		}, s.logger)
		return
	}

	if strings.TrimSpace(queryStr) == "" {
		response.BadRequest(w, "query parameter 'q' is required", s.logger)
		return
	}

	params := search.DefaultParams()
	params.Query = queryStr

	if typeParam := q.Get("type"); typeParam != "" {
		for _, t := range strings.Split(typeParam, ",") {
			eventType := domain.EventType(strings.TrimSpace(t))
			if !eventType.Valid() {
				response.BadRequest(w, "unknown event type: "+t, s.logger)
				return
			}
			params.Types = append(params.Types, eventType)
		}
	}

	if limitParam := q.Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 1 || limit > 100 {
			response.BadRequest(w, "limit must be between 1 and 100", s.logger)
			return
		}
		params.Limit = limit
	}

	if offsetParam := q.Get("offset"); offsetParam != "" {
		offset, err := strconv.Atoi(offsetParam)
		if err != nil || offset < 0 {
			response.BadRequest(w, "offset must be non-negative", s.logger)
			return
		}
		params.Offset = offset
	}

	result, err := s.searchIndex.Search(r.Context(), params)
	if err != nil {
		s.logger.Error("Search failed", "query", queryStr, "error", err)
		response.InternalError(w, "search failed", s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
