package api

import (
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	"github.com/CheongSzesuen/eventsWeb/internal/http/response"
	"github.com/CheongSzesuen/eventsWeb/internal/id"
	"github.com/CheongSzesuen/eventsWeb/internal/validation"
)

// SubmitEventRequest is the payload of the community contribution form.
type SubmitEventRequest struct {
	Type           string                        `json:"type" validate:"required"`
	Question       string                        `json:"question" validate:"required,max=500"`
	Choices        map[string]string             `json:"choices" validate:"required,min=1"`
	Results        map[string]domain.ResultValue `json:"results"`
	EndGameChoices []string                      `json:"end_game_choices"`
	Achievements   map[string]string             `json:"achievements"`
	Contributor    string                        `json:"contributor" validate:"max=100"`

	// School provenance, required for school event types.
	School     string `json:"school"`
	ProvinceID string `json:"province_id"`
	CityID     string `json:"city_id"`
}

// submitResponse matches the contribution endpoint's public contract.
type submitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleSubmitEvent accepts a community-contributed event into the review
// queue. The response shape (success/id, success/error) is part of the
// public contract of the contribution form.
func (s *Server) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req SubmitEventRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.Raw(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Error:   "invalid JSON body",
		}, s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.Raw(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Error:   err.Error(),
		}, s.logger)
		return
	}

	event := domain.Event{
		Type:           domain.EventType(req.Type),
		Question:       req.Question,
		Choices:        req.Choices,
		Results:        req.Results,
		EndGameChoices: req.EndGameChoices,
		Achievements:   req.Achievements,
		School:         req.School,
		ProvinceID:     req.ProvinceID,
		CityID:         req.CityID,
	}
	if req.Contributor != "" {
		event.Contributors = []string{req.Contributor}
	}

	if err := validation.ValidateSubmission(&event); err != nil {
		response.Raw(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Error:   err.Error(),
		}, s.logger)
		return
	}

	subID, err := id.Generate("sub")
	if err != nil {
		s.logger.Error("Failed to generate submission ID", "error", err)
		response.Raw(w, http.StatusInternalServerError, submitResponse{
			Success: false,
			Error:   "internal server error",
		}, s.logger)
		return
	}

	now := time.Now().UTC()
	submission := &domain.Submission{
		ID:          subID,
		Event:       event,
		Contributor: req.Contributor,
		Status:      domain.SubmissionStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateSubmission(r.Context(), submission); err != nil {
		s.logger.Error("Failed to store submission", "id", subID, "error", err)
		response.Raw(w, http.StatusInternalServerError, submitResponse{
			Success: false,
			Error:   "failed to store submission",
		}, s.logger)
		return
	}

	s.logger.Info("Submission received",
		"id", subID,
		"type", event.Type,
		"contributor", req.Contributor)

	response.Raw(w, http.StatusCreated, submitResponse{
		Success: true,
		ID:      subID,
	}, s.logger)
}
