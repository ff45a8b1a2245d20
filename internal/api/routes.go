package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/decks", func(r chi.Router) {
		r.Get("/", s.handleListDecks)
		r.Post("/", s.handleCreateDeck)
		r.Get("/{id}", s.handleGetDeck)
		r.Delete("/{id}", s.handleDeleteDeck)
		r.Get("/{id}/stats", s.handleDeckStats)
		r.Get("/{id}/cards/stats", s.handleCardStats)
		r.Post("/{id}/cards", s.handleAddCard)
		r.Delete("/{id}/cards/{cardID}", s.handleRemoveCard)
		r.Post("/{id}/cards/{cardID}/activate", s.handleActivateCard)
		r.Post("/{id}/cards/{cardID}/deactivate", s.handleDeactivateCard)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleStartSession)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/answer", s.handleSubmitAnswer)
		r.Post("/{id}/skip", s.handleSkip)
		r.Post("/{id}/pause", s.handlePause)
		r.Post("/{id}/resume", s.handleResume)
		r.Post("/{id}/abort", s.handleAbort)
	})

	return r
}
