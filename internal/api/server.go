package api

import (
	"database/sql"

	"github.com/go-playground/validator/v10"

	"github.com/dpereira/leitnerbox/internal/services"
)

type Server struct {
	DB           *sql.DB
	DeckService  services.DeckService
	StudyService services.StudyService
	StatsService services.StatsService

	// DefaultMaxCards is used when a start-session request omits max_cards.
	DefaultMaxCards int

	validate *validator.Validate
}

// NewServer wires handlers to services and prepares the request validator.
func NewServer(db *sql.DB, decks services.DeckService, study services.StudyService, stats services.StatsService, defaultMaxCards int) *Server {
	return &Server{
		DB:              db,
		DeckService:     decks,
		StudyService:    study,
		StatsService:    stats,
		DefaultMaxCards: defaultMaxCards,
		validate:        validator.New(),
	}
}
