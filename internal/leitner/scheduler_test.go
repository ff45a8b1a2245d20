package leitner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpereira/leitnerbox/internal/leitner"
	"github.com/dpereira/leitnerbox/internal/models"
)

func newScheduler(t *testing.T) *leitner.Scheduler {
	t.Helper()
	s, err := leitner.NewScheduler(leitner.DefaultConfig())
	require.NoError(t, err)
	return s
}

func TestNewScheduler_InvalidConfig(t *testing.T) {
	cfg := leitner.DefaultConfig()
	delete(cfg.Boxes.PromotionRules, 2)

	_, err := leitner.NewScheduler(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "box 2 has no promotion rule")
}

func TestProcessCorrectAnswer_PromotesFromBoxZero(t *testing.T) {
	s := newScheduler(t)
	card := models.Flashcard{CurrentBox: 0}

	require.NoError(t, s.ProcessCorrectAnswer(&card))

	assert.Equal(t, 1, card.CurrentBox, "one correct answer should promote out of box 0")
	assert.Equal(t, 1, card.Statistics.TotalReviews)
	assert.Equal(t, 1, card.Statistics.CorrectAnswers)
	assert.Equal(t, 1, card.Statistics.Streak)
	assert.Equal(t, 1, card.Statistics.LongestStreak)
}

func TestProcessCorrectAnswer_NeedsStreakForHigherBoxes(t *testing.T) {
	s := newScheduler(t)
	card := models.Flashcard{CurrentBox: 2}

	require.NoError(t, s.ProcessCorrectAnswer(&card))
	assert.Equal(t, 2, card.CurrentBox, "box 2 needs 3 consecutive correct answers")

	require.NoError(t, s.ProcessCorrectAnswer(&card))
	assert.Equal(t, 2, card.CurrentBox)

	require.NoError(t, s.ProcessCorrectAnswer(&card))
	assert.Equal(t, 3, card.CurrentBox, "third consecutive correct answer promotes")
	assert.Equal(t, 3, card.Statistics.Streak)
}

func TestProcessCorrectAnswer_TopBoxStays(t *testing.T) {
	s := newScheduler(t)
	card := models.Flashcard{CurrentBox: 4, Statistics: models.FlashcardStatistics{Streak: 10}}

	require.NoError(t, s.ProcessCorrectAnswer(&card))

	assert.Equal(t, 4, card.CurrentBox, "top box never promotes further")
	assert.Equal(t, 11, card.Statistics.Streak)
}

func TestProcessCorrectAnswer_ResetsIncorrectStreak(t *testing.T) {
	s := newScheduler(t)
	card := models.Flashcard{CurrentBox: 1, Statistics: models.FlashcardStatistics{IncorrectStreak: 3}}

	require.NoError(t, s.ProcessCorrectAnswer(&card))

	assert.Equal(t, 0, card.Statistics.IncorrectStreak)
}

func TestProcessCorrectAnswer_OutOfRangeBox(t *testing.T) {
	s := newScheduler(t)

	card := models.Flashcard{CurrentBox: 5}
	assert.Error(t, s.ProcessCorrectAnswer(&card))
	assert.Equal(t, 5, card.CurrentBox, "invalid box is rejected, not clamped")

	card = models.Flashcard{CurrentBox: -1}
	assert.Error(t, s.ProcessCorrectAnswer(&card))
}

func TestProcessIncorrectAnswer_DemotionTargets(t *testing.T) {
	s := newScheduler(t)

	cases := []struct {
		from int
		to   int
	}{
		{from: 1, to: 0},
		{from: 2, to: 0},
		{from: 3, to: 1},
		{from: 4, to: 2},
	}
	for _, tc := range cases {
		card := models.Flashcard{CurrentBox: tc.from}
		require.NoError(t, s.ProcessIncorrectAnswer(&card))
		assert.Equal(t, tc.to, card.CurrentBox, "box %d should demote to %d", tc.from, tc.to)
		assert.Equal(t, 0, card.Statistics.IncorrectStreak, "demotion resets the incorrect streak")
	}
}

func TestProcessIncorrectAnswer_BoxZeroIsTheFloor(t *testing.T) {
	s := newScheduler(t)
	card := models.Flashcard{CurrentBox: 0, Statistics: models.FlashcardStatistics{Streak: 2}}

	require.NoError(t, s.ProcessIncorrectAnswer(&card))

	assert.Equal(t, 0, card.CurrentBox)
	assert.Equal(t, 0, card.Statistics.Streak, "incorrect answer resets the streak")
	assert.Equal(t, 1, card.Statistics.IncorrectAnswers)
}

func TestProcessIncorrectAnswer_ThresholdAboveOne(t *testing.T) {
	cfg := leitner.DefaultConfig()
	cfg.Boxes.DemotionRules[3] = leitner.DemotionRule{IncorrectAnswersNeeded: 2, DemoteToBox: 1}
	s, err := leitner.NewScheduler(cfg)
	require.NoError(t, err)

	card := models.Flashcard{CurrentBox: 3}
	require.NoError(t, s.ProcessIncorrectAnswer(&card))
	assert.Equal(t, 3, card.CurrentBox, "first miss is below the threshold")
	assert.Equal(t, 1, card.Statistics.IncorrectStreak)

	require.NoError(t, s.ProcessIncorrectAnswer(&card))
	assert.Equal(t, 1, card.CurrentBox, "second consecutive miss demotes")
	assert.Equal(t, 0, card.Statistics.IncorrectStreak)
}

func TestUpdateNextReviewDate_UsesLandingBox(t *testing.T) {
	s := newScheduler(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// A correct answer in box 0 lands in box 1, so the next review is
	// box 1's 3-day interval, not box 0's 1-day interval.
	card := models.Flashcard{CurrentBox: 0}
	require.NoError(t, s.Apply(&card, true, now))

	require.NotNil(t, card.NextReviewDate)
	assert.Equal(t, now.AddDate(0, 0, 3), *card.NextReviewDate)
	require.NotNil(t, card.LastReviewed)
	assert.Equal(t, now, *card.LastReviewed)
}

func TestApply_IncorrectReschedulesFromDemotedBox(t *testing.T) {
	s := newScheduler(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	card := models.Flashcard{CurrentBox: 4}
	require.NoError(t, s.Apply(&card, false, now))

	assert.Equal(t, 2, card.CurrentBox)
	require.NotNil(t, card.NextReviewDate)
	assert.Equal(t, now.AddDate(0, 0, 7), *card.NextReviewDate, "interval comes from box 2")
}

func TestApply_IntervalLadder(t *testing.T) {
	s := newScheduler(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	intervals := map[int]int{0: 1, 1: 3, 2: 7, 3: 14, 4: 30}
	for box, days := range intervals {
		card := models.Flashcard{CurrentBox: box}
		require.NoError(t, s.Apply(&card, false, now))
		landed := card.CurrentBox
		assert.Equal(t, now.AddDate(0, 0, intervals[landed]), *card.NextReviewDate,
			"box %d landed in %d, expected %d days", box, landed, days)
	}
}

func TestSuccessRate(t *testing.T) {
	st := models.FlashcardStatistics{}
	assert.Equal(t, 0.0, st.SuccessRate(), "no reviews means zero, not NaN")

	st = models.FlashcardStatistics{TotalReviews: 3, CorrectAnswers: 2}
	assert.Equal(t, 66.67, st.SuccessRate())

	st = models.FlashcardStatistics{TotalReviews: 4, CorrectAnswers: 4}
	assert.Equal(t, 100.0, st.SuccessRate())
}
