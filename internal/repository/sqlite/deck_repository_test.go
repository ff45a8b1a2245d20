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

type DeckRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.DeckRepository
}

func (s *DeckRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewDeckRepository(s.db)
}

func (s *DeckRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *DeckRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	deck := models.NewDeck("Français", "Accents & unicode: did it survive?")
	deck.Tags = []string{"lang", "a1"}

	card := models.NewFlashcard(deck.ID, "l'été", "the summer", []string{"seasons"})
	card.CurrentBox = 2
	card.NextReviewDate = &now
	card.LastReviewed = &now
	card.Statistics = models.FlashcardStatistics{
		TotalReviews:        7,
		CorrectAnswers:      5,
		IncorrectAnswers:    2,
		IncorrectStreak:     1,
		AverageResponseTime: 3.25,
		TotalStudyTime:      22.75,
		Streak:              0,
		LongestStreak:       4,
	}
	deck.AddCard(card)
	deck.AddCard(models.NewFlashcard(deck.ID, "l'hiver", "the winter", nil))

	s.Require().NoError(s.repo.Insert(ctx, deck))

	got, err := s.repo.Get(ctx, deck.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)

	s.Equal("Français", got.Name)
	s.Equal("Accents & unicode: did it survive?", got.Description)
	s.Equal([]string{"lang", "a1"}, got.Tags)

	s.Require().Len(got.Cards, 2)
	first := got.Cards[0]
	s.Equal("l'été", first.Front)
	s.Equal([]string{"seasons"}, first.Tags)
	s.Equal(2, first.CurrentBox)
	s.Equal(card.Statistics.TotalReviews, first.Statistics.TotalReviews)
	s.Equal(card.Statistics.IncorrectStreak, first.Statistics.IncorrectStreak)
	s.Equal(card.Statistics.AverageResponseTime, first.Statistics.AverageResponseTime)
	s.Equal(card.Statistics.LongestStreak, first.Statistics.LongestStreak)
	s.Require().NotNil(first.NextReviewDate)
	s.WithinDuration(now, *first.NextReviewDate, time.Second)

	second := got.Cards[1]
	s.Equal("l'hiver", second.Front)
	s.Nil(second.Tags)
	s.Nil(second.NextReviewDate)
}

func (s *DeckRepositorySuite) TestGetMissing() {
	got, err := s.repo.Get(context.Background(), "no-such-deck")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *DeckRepositorySuite) TestSaveReplacesCards() {
	ctx := context.Background()

	deck := models.NewDeck("test", "")
	a := models.NewFlashcard(deck.ID, "a", "A", nil)
	b := models.NewFlashcard(deck.ID, "b", "B", nil)
	deck.AddCard(a)
	deck.AddCard(b)
	s.Require().NoError(s.repo.Insert(ctx, deck))

	// Drop one card, promote the other, touch deck aggregates.
	deck.RemoveCard(a.ID)
	deck.Cards[0].CurrentBox = 4
	deck.Statistics.TotalSessions = 3
	deck.Statistics.CardsMastered = 1
	s.Require().NoError(s.repo.Save(ctx, deck))

	got, err := s.repo.Get(ctx, deck.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Cards, 1)
	s.Equal(b.ID, got.Cards[0].ID)
	s.Equal(4, got.Cards[0].CurrentBox)
	s.Equal(3, got.Statistics.TotalSessions)
	s.Equal(1, got.Statistics.CardsMastered)
}

func (s *DeckRepositorySuite) TestSaveMissingDeck() {
	deck := models.NewDeck("ghost", "")
	err := s.repo.Save(context.Background(), deck)
	s.ErrorIs(err, sql.ErrNoRows)
}

func (s *DeckRepositorySuite) TestListAndCount() {
	ctx := context.Background()

	french := models.NewDeck("French", "")
	french.Tags = []string{"lang"}
	spanish := models.NewDeck("Spanish", "")
	spanish.Tags = []string{"lang"}
	chem := models.NewDeck("Chemistry", "")
	for _, d := range []models.Deck{french, spanish, chem} {
		s.Require().NoError(s.repo.Insert(ctx, d))
	}

	all, err := s.repo.List(ctx, repository.DeckFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	byName, err := s.repo.List(ctx, repository.DeckFilter{NameLike: "ren"})
	s.Require().NoError(err)
	s.Require().Len(byName, 1)
	s.Equal("French", byName[0].Name)

	byTag, err := s.repo.List(ctx, repository.DeckFilter{Tag: "lang"})
	s.Require().NoError(err)
	s.Len(byTag, 2)

	n, err := s.repo.Count(ctx, repository.DeckFilter{Tag: "lang"})
	s.Require().NoError(err)
	s.Equal(2, n)

	ordered, err := s.repo.List(ctx, repository.DeckFilter{OrderBy: "name", OrderDir: "ASC"})
	s.Require().NoError(err)
	s.Require().Len(ordered, 3)
	s.Equal("Chemistry", ordered[0].Name)
	s.Equal("Spanish", ordered[2].Name)

	paged, err := s.repo.List(ctx, repository.DeckFilter{OrderBy: "name", OrderDir: "ASC", Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(paged, 1)
	s.Equal("French", paged[0].Name)
}

func (s *DeckRepositorySuite) TestDelete() {
	ctx := context.Background()

	deck := models.NewDeck("doomed", "")
	deck.AddCard(models.NewFlashcard(deck.ID, "f", "b", nil))
	s.Require().NoError(s.repo.Insert(ctx, deck))

	s.Require().NoError(s.repo.Delete(ctx, deck.ID))

	got, err := s.repo.Get(ctx, deck.ID)
	s.Require().NoError(err)
	s.Nil(got)

	var orphans int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM flashcards WHERE deck_id = ?`, deck.ID).Scan(&orphans))
	s.Equal(0, orphans, "cards go with the deck")

	s.ErrorIs(s.repo.Delete(ctx, deck.ID), sql.ErrNoRows)
}

func (s *DeckRepositorySuite) TestCountDue() {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -2)
	future := now.AddDate(0, 0, 2)

	deck := models.NewDeck("due", "")

	unscheduled := models.NewFlashcard(deck.ID, "1", "1", nil)
	overdue := models.NewFlashcard(deck.ID, "2", "2", nil)
	overdue.NextReviewDate = &past
	later := models.NewFlashcard(deck.ID, "3", "3", nil)
	later.NextReviewDate = &future
	inactive := models.NewFlashcard(deck.ID, "4", "4", nil)
	inactive.NextReviewDate = &past
	inactive.IsActive = false

	for _, c := range []models.Flashcard{unscheduled, overdue, later, inactive} {
		deck.AddCard(c)
	}
	s.Require().NoError(s.repo.Insert(ctx, deck))

	n, err := s.repo.CountDue(ctx, deck.ID, now)
	s.Require().NoError(err)
	s.Equal(2, n, "unscheduled and overdue count, future and inactive do not")
}

func TestDeckRepositorySuite(t *testing.T) {
	suite.Run(t, new(DeckRepositorySuite))
}
