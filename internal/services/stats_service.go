package services

import (
	"context"
	"time"

	"github.com/dpereira/leitnerbox/internal/errors"
	"github.com/dpereira/leitnerbox/internal/leitner"
	"github.com/dpereira/leitnerbox/internal/logger"
	"github.com/dpereira/leitnerbox/internal/models"
	"github.com/dpereira/leitnerbox/internal/repository"
)

// StatsService handles statistics reporting
type StatsService interface {
	DeckSummary(ctx context.Context, deckID string) (*models.DeckSummary, error)
	CardStats(ctx context.Context, deckID string) ([]models.CardStat, error)
}

type statsService struct {
	decks repository.DeckRepository
	cfg   leitner.Config
}

// NewStatsService creates a new StatsService
func NewStatsService(decks repository.DeckRepository, cfg leitner.Config) StatsService {
	return &statsService{decks: decks, cfg: cfg}
}

func (s *statsService) DeckSummary(ctx context.Context, deckID string) (*models.DeckSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("building deck summary: deck_id=%s", deckID)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	due, err := s.decks.CountDue(ctx, deckID, time.Now().UTC())
	if err != nil {
		log.Error("failed to count due cards: %v", err)
		return nil, errors.NewInternalError(err)
	}

	newCards := 0
	for i := range deck.Cards {
		if deck.Cards[i].IsActive && deck.Cards[i].IsNew() {
			newCards++
		}
	}

	distribution := make([]models.BoxCount, 0, s.cfg.Boxes.NumberOfBoxes)
	for box := 0; box < s.cfg.Boxes.NumberOfBoxes; box++ {
		distribution = append(distribution, models.BoxCount{
			Box:          box,
			Count:        deck.CardsInBox(box),
			IntervalDays: s.cfg.Scheduling.BoxIntervals[box],
		})
	}

	return &models.DeckSummary{
		DeckID:          deck.ID,
		Name:            deck.Name,
		TotalCards:      deck.TotalCards(),
		ActiveCards:     deck.ActiveCards(),
		DueNow:          due,
		NewCards:        newCards,
		BoxDistribution: distribution,
		Statistics:      deck.Statistics,
	}, nil
}

func (s *statsService) CardStats(ctx context.Context, deckID string) ([]models.CardStat, error) {
	log := logger.FromContext(ctx)
	log.Debug("building card stats: deck_id=%s", deckID)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	stats := make([]models.CardStat, 0, len(deck.Cards))
	for i := range deck.Cards {
		c := &deck.Cards[i]
		stats = append(stats, models.CardStat{
			CardID:         c.ID,
			Front:          c.Front,
			CurrentBox:     c.CurrentBox,
			IsActive:       c.IsActive,
			TotalReviews:   c.Statistics.TotalReviews,
			SuccessRate:    c.Statistics.SuccessRate(),
			Streak:         c.Statistics.Streak,
			LongestStreak:  c.Statistics.LongestStreak,
			NextReviewDate: c.NextReviewDate,
		})
	}
	return stats, nil
}
