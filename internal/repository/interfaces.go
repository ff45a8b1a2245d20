package repository

import (
	"context"
	"time"

	"github.com/dpereira/leitnerbox/internal/models"
)

// DeckFilter narrows and pages deck listings.
type DeckFilter struct {
	NameLike string
	Tag      string
	OrderBy  string // "name" or "last_modified"
	OrderDir string // "ASC" or "DESC"
	Limit    int
	Offset   int
}

// DeckRepository handles deck and flashcard persistence. Get loads the deck
// together with its cards in insertion order; Save writes back the deck row
// and every card in one transaction.
type DeckRepository interface {
	Insert(ctx context.Context, deck models.Deck) error
	Save(ctx context.Context, deck models.Deck) error
	Get(ctx context.Context, id string) (*models.Deck, error)
	List(ctx context.Context, filter DeckFilter) ([]models.Deck, error)
	Count(ctx context.Context, filter DeckFilter) (int, error)
	Delete(ctx context.Context, id string) error
	CountDue(ctx context.Context, deckID string, now time.Time) (int, error)
}

// SessionRepository handles study session snapshots.
type SessionRepository interface {
	Insert(ctx context.Context, state models.SessionState) error
	Update(ctx context.Context, state models.SessionState) error
	Get(ctx context.Context, id string) (*models.SessionState, error)
	ActiveSessionForDeck(ctx context.Context, deckID string) (*models.SessionState, error)
	ListActive(ctx context.Context) ([]models.SessionState, error)
	ExpireIdleBefore(ctx context.Context, cutoff time.Time) (int, error)
}
