package leitner

import (
	"math/rand"
	"time"

	"github.com/dpereira/leitnerbox/internal/models"
)

// Selector builds the bounded, ordered queue of cards for a study session.
type Selector struct {
	cfg Config
	rng *rand.Rand
}

// NewSelector creates a Selector over an immutable configuration snapshot.
func NewSelector(cfg Config) *Selector {
	return &Selector{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SelectCards produces the session queue for a deck. Only active cards are
// eligible; an empty result means "nothing to study", not an error. A
// non-positive maxCards yields an empty queue, same as an empty deck.
// Never-reviewed cards are throttled by MaxNewCardsPerDay.
func (sel *Selector) SelectCards(deck *models.Deck, mode models.StudyMode, maxCards int, now time.Time) []models.SessionCard {
	if deck == nil || maxCards <= 0 {
		return nil
	}

	var due, later []*models.Flashcard
	newCards := 0
	for i := range deck.Cards {
		card := &deck.Cards[i]
		if !card.IsActive {
			continue
		}
		if card.IsNew() {
			if sel.cfg.Scheduling.MaxNewCardsPerDay > 0 && newCards >= sel.cfg.Scheduling.MaxNewCardsPerDay {
				continue
			}
			newCards++
		}
		if card.IsDue(now) {
			due = append(due, card)
		} else {
			later = append(later, card)
		}
	}

	// Due cards always come first. Shuffling happens within each group so
	// the cap never drops a due card in favor of one scheduled later.
	if sel.cfg.ShuffleCards {
		sel.shuffle(due)
		sel.shuffle(later)
	}
	eligible := append(due, later...)
	if len(eligible) == 0 {
		return nil
	}

	if len(eligible) > maxCards {
		eligible = eligible[:maxCards]
	}

	queue := make([]models.SessionCard, 0, len(eligible))
	for _, card := range eligible {
		queue = append(queue, models.SessionCard{
			CardID:    card.ID,
			Direction: sel.direction(mode),
		})
	}
	return queue
}

func (sel *Selector) shuffle(cards []*models.Flashcard) {
	sel.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

func (sel *Selector) direction(mode models.StudyMode) models.Direction {
	switch mode {
	case models.BackToFront:
		return models.DirectionBack
	case models.Mixed:
		if sel.rng.Intn(2) == 0 {
			return models.DirectionFront
		}
		return models.DirectionBack
	default:
		return models.DirectionFront
	}
}

// DueCards returns the active cards due at the given instant, in insertion
// order. Used by statistics reporting.
func (sel *Selector) DueCards(deck *models.Deck, now time.Time) []models.Flashcard {
	var due []models.Flashcard
	for i := range deck.Cards {
		if deck.Cards[i].IsActive && deck.Cards[i].IsDue(now) {
			due = append(due, deck.Cards[i])
		}
	}
	return due
}
