package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dpereira/leitnerbox/internal/models"
	"github.com/dpereira/leitnerbox/internal/repository"
	"github.com/dpereira/leitnerbox/internal/repository/sqlite"
	"github.com/dpereira/leitnerbox/internal/testutil"
)

type SessionRepositorySuite struct {
	suite.Suite
	db    *sql.DB
	repo  repository.SessionRepository
	decks repository.DeckRepository
}

func (s *SessionRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSessionRepository(s.db)
	s.decks = sqlite.NewDeckRepository(s.db)
}

func (s *SessionRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SessionRepositorySuite) createDeck() string {
	deck := models.NewDeck("session deck", "")
	s.Require().NoError(s.decks.Insert(context.Background(), deck))
	return deck.ID
}

func (s *SessionRepositorySuite) newState(deckID string) *models.SessionState {
	queue := []models.SessionCard{
		{CardID: "card-1", Direction: models.DirectionFront},
		{CardID: "card-2", Direction: models.DirectionBack},
	}
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return models.NewSessionState(deckID, models.Mixed, queue, now)
}

func (s *SessionRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	state := s.newState(s.createDeck())

	s.Require().NoError(s.repo.Insert(ctx, *state))

	got, err := s.repo.Get(ctx, state.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)

	s.Equal(state.DeckID, got.DeckID)
	s.Equal(models.Mixed, got.StudyMode)
	s.Equal(state.CardsToStudy, got.CardsToStudy, "queue round-trips with directions intact")
	s.Equal(0, got.CurrentCardIndex)
	s.True(got.IsActive)
	s.Nil(got.StudiedCards)
	s.Nil(got.SkippedCards)
	s.Equal(2, got.Statistics.TotalCards)
	s.WithinDuration(state.SessionStartTime, got.SessionStartTime, time.Second)
}

func (s *SessionRepositorySuite) TestGetMissing() {
	got, err := s.repo.Get(context.Background(), "no-such-session")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *SessionRepositorySuite) TestUpdateProgress() {
	ctx := context.Background()
	state := s.newState(s.createDeck())
	s.Require().NoError(s.repo.Insert(ctx, *state))

	state.CurrentCardIndex = 2
	state.StudiedCards = []string{"card-1", "card-2"}
	state.IncorrectCards = []string{"card-2"}
	state.IsActive = false
	state.Statistics.CardsStudied = 2
	state.Statistics.CorrectAnswers = 1
	state.Statistics.IncorrectAnswers = 1
	state.Statistics.TotalStudyTime = 12.5
	s.Require().NoError(s.repo.Update(ctx, *state))

	got, err := s.repo.Get(ctx, state.ID)
	s.Require().NoError(err)
	s.Equal(2, got.CurrentCardIndex)
	s.Equal([]string{"card-1", "card-2"}, got.StudiedCards)
	s.Equal([]string{"card-2"}, got.IncorrectCards)
	s.False(got.IsActive)
	s.Equal(12.5, got.Statistics.TotalStudyTime)
}

func (s *SessionRepositorySuite) TestUpdateMissing() {
	state := s.newState(s.createDeck())
	s.ErrorIs(s.repo.Update(context.Background(), *state), sql.ErrNoRows)
}

func (s *SessionRepositorySuite) TestActiveSessionForDeck() {
	ctx := context.Background()
	deckID := s.createDeck()

	gone, err := s.repo.ActiveSessionForDeck(ctx, deckID)
	s.Require().NoError(err)
	s.Nil(gone)

	ended := s.newState(deckID)
	ended.IsActive = false
	s.Require().NoError(s.repo.Insert(ctx, *ended))

	active := s.newState(deckID)
	active.SessionStartTime = ended.SessionStartTime.Add(time.Hour)
	s.Require().NoError(s.repo.Insert(ctx, *active))

	got, err := s.repo.ActiveSessionForDeck(ctx, deckID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(active.ID, got.ID, "ended sessions do not own the deck")
}

func (s *SessionRepositorySuite) TestListActive() {
	ctx := context.Background()

	first := s.newState(s.createDeck())
	second := s.newState(s.createDeck())
	ended := s.newState(s.createDeck())
	ended.IsActive = false
	for _, st := range []*models.SessionState{first, second, ended} {
		s.Require().NoError(s.repo.Insert(ctx, *st))
	}

	active, err := s.repo.ListActive(ctx)
	s.Require().NoError(err)
	s.Len(active, 2)
}

func (s *SessionRepositorySuite) TestExpireIdleBefore() {
	ctx := context.Background()

	stale := s.newState(s.createDeck())
	stale.LastSaveTime = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	fresh := s.newState(s.createDeck())
	fresh.LastSaveTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.repo.Insert(ctx, *stale))
	s.Require().NoError(s.repo.Insert(ctx, *fresh))

	n, err := s.repo.ExpireIdleBefore(ctx, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal(1, n)

	got, err := s.repo.Get(ctx, stale.ID)
	s.Require().NoError(err)
	s.False(got.IsActive)

	got, err = s.repo.Get(ctx, fresh.ID)
	s.Require().NoError(err)
	s.True(got.IsActive)
}

func TestSessionRepositorySuite(t *testing.T) {
	suite.Run(t, new(SessionRepositorySuite))
}
