package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	"github.com/CheongSzesuen/eventsWeb/internal/http/response"
)

// handleGetEvents serves the aggregated corpus. Without query parameters the
// full corpus is returned in its public JSON shape; with type/page/limit a
// filtered page is returned instead.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("type") == "" && q.Get("page") == "" && q.Get("limit") == "" {
		corpus, err := s.catalog.Corpus(r.Context())
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		maxAge := int(s.catalog.TTL().Seconds())
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
		response.Raw(w, http.StatusOK, corpus, s.logger)
		return
	}

	eventType := domain.EventType(q.Get("type"))
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	pageResult, err := s.catalog.ListEvents(r.Context(), eventType, page, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, pageResult, s.logger)
}

// handleGetProvince returns one province node of the hierarchy.
func (s *Server) handleGetProvince(w http.ResponseWriter, r *http.Request) {
	provinceID := chi.URLParam(r, "provinceID")

	province, err := s.catalog.GetProvince(r.Context(), provinceID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, province, s.logger)
}

// handleGetCity returns one city node of the hierarchy.
func (s *Server) handleGetCity(w http.ResponseWriter, r *http.Request) {
	provinceID := chi.URLParam(r, "provinceID")
	cityID := chi.URLParam(r, "cityID")

	city, err := s.catalog.GetCity(r.Context(), provinceID, cityID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, city, s.logger)
}

// handleGetSchools returns the schools of one city.
func (s *Server) handleGetSchools(w http.ResponseWriter, r *http.Request) {
	provinceID := chi.URLParam(r, "provinceID")
	cityID := chi.URLParam(r, "cityID")

	schools, err := s.catalog.GetSchoolsByCity(r.Context(), provinceID, cityID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, schools, s.logger)
}
