package worker

import (
	"context"
	"fmt"

	"github.com/dpereira/leitnerbox/internal/models"
	"github.com/dpereira/leitnerbox/internal/repository"
)

// SaveSessionJob checkpoints a session snapshot in the background.
type SaveSessionJob struct {
	Sessions repository.SessionRepository
	State    models.SessionState
}

func (j *SaveSessionJob) Run(ctx context.Context) error {
	return j.Sessions.Update(ctx, j.State)
}

func (j *SaveSessionJob) Name() string {
	return fmt.Sprintf("save-session %s", j.State.ID)
}

// SaveDeckJob persists a deck snapshot in the background.
type SaveDeckJob struct {
	Decks repository.DeckRepository
	Deck  models.Deck
}

func (j *SaveDeckJob) Run(ctx context.Context) error {
	return j.Decks.Save(ctx, j.Deck)
}

func (j *SaveDeckJob) Name() string {
	return fmt.Sprintf("save-deck %s", j.Deck.ID)
}
