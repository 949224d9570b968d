package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	"github.com/CheongSzesuen/eventsWeb/internal/http/response"
	"github.com/CheongSzesuen/eventsWeb/internal/store"
)

// handleRefresh drops all caches and rebuilds the corpus from the source.
// Memoized missing resources are retried on the rebuild.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.fetcher.Reset()

	corpus, err := s.catalog.Refresh(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("Manual refresh completed", "total", corpus.Total)

	response.Success(w, map[string]any{
		"total":     corpus.Total,
		"provinces": len(corpus.Provinces.Provinces),
		"exam":      len(corpus.ExamEvents),
		"random":    len(corpus.RandomEvents),
		"school":    len(corpus.SchoolEvents),
	}, s.logger)
}

// handleListSubmissions lists queued submissions, optionally by status.
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := domain.SubmissionStatus(q.Get("status"))
	switch status {
	case "", domain.SubmissionStatusPending, domain.SubmissionStatusApproved, domain.SubmissionStatusRejected:
	default:
		response.BadRequest(w, "unknown status: "+string(status), s.logger)
		return
	}

	params := store.PaginationParams{Cursor: q.Get("cursor")}
	if limitParam := q.Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			response.BadRequest(w, "limit must be a positive integer", s.logger)
			return
		}
		params.Limit = limit
	}

	result, err := s.store.ListSubmissions(r.Context(), status, params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

type updateStatusRequest struct {
	Status domain.SubmissionStatus `json:"status"`
}

// handleUpdateSubmissionStatus moves a submission through the review queue.
func (s *Server) handleUpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	subID := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body", s.logger)
		return
	}

	switch req.Status {
	case domain.SubmissionStatusPending, domain.SubmissionStatusApproved, domain.SubmissionStatusRejected:
	default:
		response.BadRequest(w, "unknown status: "+string(req.Status), s.logger)
		return
	}

	sub, err := s.store.UpdateSubmissionStatus(r.Context(), subID, req.Status)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("Submission status updated", "id", subID, "status", req.Status)

	response.Success(w, sub, s.logger)
}
