package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// FlashcardStatistics tracks per-card review history.
type FlashcardStatistics struct {
	TotalReviews        int        `json:"total_reviews"`
	CorrectAnswers      int        `json:"correct_answers"`
	IncorrectAnswers    int        `json:"incorrect_answers"`
	IncorrectStreak     int        `json:"incorrect_streak"`
	AverageResponseTime float64    `json:"average_response_time"`
	TotalStudyTime      float64    `json:"total_study_time"`
	LastStudySession    *time.Time `json:"last_study_session,omitempty"`
	Streak              int        `json:"streak"`
	LongestStreak       int        `json:"longest_streak"`
}

// SuccessRate returns the percentage of correct answers, rounded to two
// decimal places. Zero when the card has never been reviewed.
func (s FlashcardStatistics) SuccessRate() float64 {
	if s.TotalReviews == 0 {
		return 0
	}
	return Round2(float64(s.CorrectAnswers) / float64(s.TotalReviews) * 100)
}

type Flashcard struct {
	ID             string              `json:"id"`
	DeckID         string              `json:"deck_id"`
	Front          string              `json:"front"`
	Back           string              `json:"back"`
	Tags           []string            `json:"tags"`
	CurrentBox     int                 `json:"current_box"`
	IsActive       bool                `json:"is_active"`
	CreatedDate    time.Time           `json:"created_date"`
	LastReviewed   *time.Time          `json:"last_reviewed,omitempty"`
	NextReviewDate *time.Time          `json:"next_review_date,omitempty"`
	Statistics     FlashcardStatistics `json:"statistics"`
}

// NewFlashcard creates a card in box 0, active, with a fresh identity.
func NewFlashcard(deckID, front, back string, tags []string) Flashcard {
	return Flashcard{
		ID:          uuid.NewString(),
		DeckID:      deckID,
		Front:       front,
		Back:        back,
		Tags:        tags,
		CurrentBox:  0,
		IsActive:    true,
		CreatedDate: time.Now().UTC(),
	}
}

// IsDue reports whether the card is due at the given instant. A card that was
// never scheduled is due immediately.
func (c Flashcard) IsDue(now time.Time) bool {
	if c.NextReviewDate == nil {
		return true
	}
	return !c.NextReviewDate.After(now)
}

// IsNew reports whether the card has never been reviewed.
func (c Flashcard) IsNew() bool {
	return c.Statistics.TotalReviews == 0
}

// HasTag reports whether the card carries the given tag. Tag order is
// irrelevant.
func (c Flashcard) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
