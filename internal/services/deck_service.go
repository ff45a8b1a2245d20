package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/dpereira/leitnerbox/internal/errors"
	"github.com/dpereira/leitnerbox/internal/leitner"
	"github.com/dpereira/leitnerbox/internal/logger"
	"github.com/dpereira/leitnerbox/internal/models"
	"github.com/dpereira/leitnerbox/internal/repository"
)

// DeckService handles deck and card management
type DeckService interface {
	CreateDeck(ctx context.Context, name, description string, tags []string) (*models.Deck, error)
	GetDeck(ctx context.Context, id string) (*models.Deck, error)
	ListDecks(ctx context.Context, filter repository.DeckFilter) ([]models.Deck, int, error)
	AddCard(ctx context.Context, deckID, front, back string, tags []string) (*models.Flashcard, error)
	RemoveCard(ctx context.Context, deckID, cardID string) error
	SetCardActive(ctx context.Context, deckID, cardID string, active bool) error
	SaveDeck(ctx context.Context, deck *models.Deck) error
	DeleteDeck(ctx context.Context, id string) error
}

type deckService struct {
	decks repository.DeckRepository
	cfg   leitner.Config
}

// NewDeckService creates a new DeckService
func NewDeckService(decks repository.DeckRepository, cfg leitner.Config) DeckService {
	return &deckService{decks: decks, cfg: cfg}
}

func (s *deckService) CreateDeck(ctx context.Context, name, description string, tags []string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating deck: name=%q", name)

	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	deck := models.NewDeck(strings.TrimSpace(name), description)
	deck.Tags = tags
	if err := s.decks.Insert(ctx, deck); err != nil {
		log.Error("failed to insert deck: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("deck created: id=%s, name=%q", deck.ID, deck.Name)
	return &deck, nil
}

func (s *deckService) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting deck: id=%s", id)

	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}

func (s *deckService) ListDecks(ctx context.Context, filter repository.DeckFilter) ([]models.Deck, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing decks")

	decks, err := s.decks.List(ctx, filter)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.decks.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count decks: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return decks, total, nil
}

func (s *deckService) AddCard(ctx context.Context, deckID, front, back string, tags []string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("adding card to deck: deck_id=%s", deckID)

	if strings.TrimSpace(front) == "" {
		return nil, errors.NewValidationError("front", "cannot be empty")
	}
	if strings.TrimSpace(back) == "" {
		return nil, errors.NewValidationError("back", "cannot be empty")
	}

	deck, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	card := models.NewFlashcard(deckID, front, back, tags)
	if s.cfg.Scheduling.NewCardInterval > 0 {
		due := time.Now().UTC().AddDate(0, 0, s.cfg.Scheduling.NewCardInterval)
		card.NextReviewDate = &due
	}
	deck.AddCard(card)

	if err := s.SaveDeck(ctx, deck); err != nil {
		return nil, err
	}
	log.Info("card added: deck_id=%s, card_id=%s", deckID, card.ID)
	return &card, nil
}

func (s *deckService) RemoveCard(ctx context.Context, deckID, cardID string) error {
	log := logger.FromContext(ctx)
	log.Debug("removing card: deck_id=%s, card_id=%s", deckID, cardID)

	deck, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return err
	}
	if !deck.RemoveCard(cardID) {
		return errors.NewNotFoundError("flashcard", cardID)
	}
	return s.SaveDeck(ctx, deck)
}

func (s *deckService) SetCardActive(ctx context.Context, deckID, cardID string, active bool) error {
	log := logger.FromContext(ctx)
	log.Debug("setting card active: deck_id=%s, card_id=%s, active=%v", deckID, cardID, active)

	deck, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return err
	}
	card := deck.CardByID(cardID)
	if card == nil {
		return errors.NewNotFoundError("flashcard", cardID)
	}
	card.IsActive = active
	deck.LastModified = time.Now().UTC()
	return s.SaveDeck(ctx, deck)
}

func (s *deckService) SaveDeck(ctx context.Context, deck *models.Deck) error {
	log := logger.FromContext(ctx)

	if err := s.decks.Save(ctx, *deck); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("deck", deck.ID)
		}
		log.Error("failed to save deck: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *deckService) DeleteDeck(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting deck: id=%s", id)

	if err := s.decks.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("deck", id)
		}
		log.Error("failed to delete deck: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("deck deleted: id=%s", id)
	return nil
}
