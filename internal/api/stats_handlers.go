package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleDeckStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.StatsService.DeckSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StatsService.CardStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
