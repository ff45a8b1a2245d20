package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dpereira/leitnerbox/internal/logger"
	"github.com/dpereira/leitnerbox/internal/repository"
)

type createDeckRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags" validate:"dive,max=100"`
}

type addCardRequest struct {
	Front string   `json:"front" validate:"required,max=5000"`
	Back  string   `json:"back" validate:"required,max=5000"`
	Tags  []string `json:"tags" validate:"dive,max=100"`
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	filter := repository.DeckFilter{
		NameLike: q.Get("name"),
		Tag:      q.Get("tag"),
		OrderBy:  q.Get("order_by"),
		OrderDir: q.Get("order_dir"),
		Limit:    limit,
		Offset:   offset,
	}

	decks, total, err := s.DeckService.ListDecks(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"decks": decks,
		"total": total,
	})
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createDeckRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.CreateDeck(r.Context(), req.Name, req.Description, req.Tags)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("deck created via API: id=%s", deck.ID)
	respondJSON(w, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.DeckService.GetDeck(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := s.DeckService.DeleteDeck(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var req addCardRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.DeckService.AddCard(r.Context(), chi.URLParam(r, "id"), req.Front, req.Back, req.Tags)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, card)
}

func (s *Server) handleRemoveCard(w http.ResponseWriter, r *http.Request) {
	err := s.DeckService.RemoveCard(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cardID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateCard(w http.ResponseWriter, r *http.Request) {
	s.setCardActive(w, r, true)
}

func (s *Server) handleDeactivateCard(w http.ResponseWriter, r *http.Request) {
	s.setCardActive(w, r, false)
}

func (s *Server) setCardActive(w http.ResponseWriter, r *http.Request, active bool) {
	err := s.DeckService.SetCardActive(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cardID"), active)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
