package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpereira/leitnerbox/internal/models"
)

func TestNewFlashcard(t *testing.T) {
	card := models.NewFlashcard("deck-1", "Bonjour", "Hello", []string{"french"})

	assert.NotEmpty(t, card.ID)
	assert.Equal(t, "deck-1", card.DeckID)
	assert.Equal(t, 0, card.CurrentBox, "new cards start in box 0")
	assert.True(t, card.IsActive)
	assert.True(t, card.IsNew())
	assert.Nil(t, card.NextReviewDate)
}

func TestFlashcard_IsDue(t *testing.T) {
	now := time.Now()
	card := models.Flashcard{}
	assert.True(t, card.IsDue(now), "unscheduled card is due immediately")

	past := now.Add(-time.Hour)
	card.NextReviewDate = &past
	assert.True(t, card.IsDue(now))

	card.NextReviewDate = &now
	assert.True(t, card.IsDue(now), "due exactly at the boundary")

	future := now.Add(time.Hour)
	card.NextReviewDate = &future
	assert.False(t, card.IsDue(now))
}

func TestFlashcard_HasTag(t *testing.T) {
	card := models.Flashcard{Tags: []string{"french", "verbs"}}
	assert.True(t, card.HasTag("verbs"))
	assert.False(t, card.HasTag("nouns"))
	assert.False(t, models.Flashcard{}.HasTag("any"))
}

func TestDeck_DerivedCounts(t *testing.T) {
	deck := models.NewDeck("French", "A1 vocabulary")

	a := models.NewFlashcard(deck.ID, "un", "one", nil)
	b := models.NewFlashcard(deck.ID, "deux", "two", nil)
	b.CurrentBox = 3
	c := models.NewFlashcard(deck.ID, "trois", "three", nil)
	c.IsActive = false
	deck.AddCard(a)
	deck.AddCard(b)
	deck.AddCard(c)

	assert.Equal(t, 3, deck.TotalCards())
	assert.Equal(t, 2, deck.ActiveCards())
	assert.Equal(t, 1, deck.CardsInBox(0))
	assert.Equal(t, 1, deck.CardsInBox(3))
	assert.Equal(t, 0, deck.CardsInBox(4), "inactive cards do not count")
}

func TestDeck_AddRemoveCard(t *testing.T) {
	deck := models.NewDeck("test", "")
	card := models.NewFlashcard(deck.ID, "front", "back", nil)
	deck.AddCard(card)

	found := deck.CardByID(card.ID)
	require.NotNil(t, found)
	assert.Equal(t, "front", found.Front)

	assert.True(t, deck.RemoveCard(card.ID))
	assert.False(t, deck.RemoveCard(card.ID), "second removal reports absence")
	assert.Nil(t, deck.CardByID(card.ID))
}

func TestParseStudyMode(t *testing.T) {
	for _, valid := range []string{"front_to_back", "back_to_front", "mixed"} {
		mode, err := models.ParseStudyMode(valid)
		require.NoError(t, err)
		assert.Equal(t, models.StudyMode(valid), mode)
	}

	_, err := models.ParseStudyMode("sideways")
	assert.Error(t, err)
}

func TestSessionState_CursorHelpers(t *testing.T) {
	queue := []models.SessionCard{
		{CardID: "a", Direction: models.DirectionFront},
		{CardID: "b", Direction: models.DirectionFront},
	}
	state := models.NewSessionState("deck-1", models.FrontToBack, queue, time.Now())

	assert.True(t, state.IsActive)
	assert.Equal(t, 2, state.RemainingCards())
	assert.False(t, state.Completed())

	current, ok := state.CurrentCard()
	require.True(t, ok)
	assert.Equal(t, "a", current.CardID)

	state.CurrentCardIndex = 2
	_, ok = state.CurrentCard()
	assert.False(t, ok)
	assert.True(t, state.Completed())
	assert.Equal(t, 0, state.RemainingCards())
}

func TestSessionStatistics_SuccessRate(t *testing.T) {
	st := models.SessionStatistics{}
	assert.Equal(t, 0.0, st.SuccessRate(), "nothing studied means zero")

	st = models.SessionStatistics{CardsStudied: 3, CorrectAnswers: 1}
	assert.Equal(t, 33.33, st.SuccessRate())
}
