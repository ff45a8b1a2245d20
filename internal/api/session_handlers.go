package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dpereira/leitnerbox/internal/errors"
	"github.com/dpereira/leitnerbox/internal/logger"
	"github.com/dpereira/leitnerbox/internal/models"
)

type startSessionRequest struct {
	DeckID string `json:"deck_id" validate:"required,uuid4"`
	Mode   string `json:"mode" validate:"required"`
	// A missing max_cards falls back to the configured default; an explicit
	// zero means "nothing to study" by contract.
	MaxCards *int `json:"max_cards"`
}

type answerRequest struct {
	CardID       string  `json:"card_id" validate:"required,uuid4"`
	Correct      *bool   `json:"correct" validate:"required"`
	ResponseTime float64 `json:"response_time" validate:"gte=0"`
}

type skipRequest struct {
	CardID string `json:"card_id" validate:"required,uuid4"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req startSessionRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	mode, err := models.ParseStudyMode(req.Mode)
	if err != nil {
		handleError(w, r, errors.NewValidationError("mode", err.Error()))
		return
	}

	maxCards := s.DefaultMaxCards
	if req.MaxCards != nil {
		maxCards = *req.MaxCards
	}

	result, err := s.StudyService.StartSession(r.Context(), req.DeckID, mode, maxCards)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if !result.Success {
		// "Nothing to study" is a structured outcome, not an error.
		respondJSON(w, http.StatusOK, result)
		return
	}

	log.Info("session started via API: id=%s", result.Session.ID)
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.StudyService.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.StudyService.SubmitAnswer(r.Context(), chi.URLParam(r, "id"), req.CardID, *req.Correct, req.ResponseTime)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	var req skipRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.StudyService.Skip(r.Context(), chi.URLParam(r, "id"), req.CardID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.StudyService.Pause(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	state, err := s.StudyService.Resume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	if err := s.StudyService.Abort(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
