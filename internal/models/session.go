package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StudyMode controls which side of a card is shown first.
type StudyMode string

const (
	FrontToBack StudyMode = "front_to_back"
	BackToFront StudyMode = "back_to_front"
	Mixed       StudyMode = "mixed"
)

// ParseStudyMode validates a study mode string.
func ParseStudyMode(s string) (StudyMode, error) {
	switch StudyMode(s) {
	case FrontToBack, BackToFront, Mixed:
		return StudyMode(s), nil
	}
	return "", fmt.Errorf("unknown study mode %q", s)
}

// Direction is the presentation direction chosen for a single card in a
// session queue. For Mixed mode it is randomized per card.
type Direction string

const (
	DirectionFront Direction = "front_to_back"
	DirectionBack  Direction = "back_to_front"
)

// SessionCard is one entry in a session's study queue.
type SessionCard struct {
	CardID    string    `json:"card_id"`
	Direction Direction `json:"direction"`
}

// SessionStatistics tracks progress within a single study session. Skipped
// cards never count toward CardsStudied so success rates stay honest.
type SessionStatistics struct {
	TotalCards       int       `json:"total_cards"`
	CardsStudied     int       `json:"cards_studied"`
	CorrectAnswers   int       `json:"correct_answers"`
	IncorrectAnswers int       `json:"incorrect_answers"`
	TotalStudyTime   float64   `json:"total_study_time"`
	SessionStartTime time.Time `json:"session_start_time"`
	LastActivityTime time.Time `json:"last_activity_time"`
}

// SuccessRate returns the percentage of correct answers among studied cards,
// rounded to two decimal places. Zero when nothing has been studied.
func (s SessionStatistics) SuccessRate() float64 {
	if s.CardsStudied == 0 {
		return 0
	}
	return Round2(float64(s.CorrectAnswers) / float64(s.CardsStudied) * 100)
}

// SessionState is the serializable snapshot of a study session. It carries
// everything needed to resume an interrupted session from disk.
type SessionState struct {
	ID               string            `json:"id"`
	DeckID           string            `json:"deck_id"`
	StudyMode        StudyMode         `json:"study_mode"`
	CardsToStudy     []SessionCard     `json:"cards_to_study"`
	CurrentCardIndex int               `json:"current_card_index"`
	StudiedCards     []string          `json:"studied_cards"`
	IncorrectCards   []string          `json:"incorrect_cards"`
	SkippedCards     []string          `json:"skipped_cards"`
	SessionStartTime time.Time         `json:"session_start_time"`
	LastSaveTime     time.Time         `json:"last_save_time"`
	IsActive         bool              `json:"is_active"`
	Statistics       SessionStatistics `json:"statistics"`
}

// NewSessionState builds a fresh active session over the given queue.
func NewSessionState(deckID string, mode StudyMode, queue []SessionCard, now time.Time) *SessionState {
	return &SessionState{
		ID:               uuid.NewString(),
		DeckID:           deckID,
		StudyMode:        mode,
		CardsToStudy:     queue,
		CurrentCardIndex: 0,
		SessionStartTime: now,
		LastSaveTime:     now,
		IsActive:         true,
		Statistics: SessionStatistics{
			TotalCards:       len(queue),
			SessionStartTime: now,
			LastActivityTime: now,
		},
	}
}

// CurrentCard returns the queue entry at the cursor, or false when the queue
// is exhausted.
func (s *SessionState) CurrentCard() (SessionCard, bool) {
	if s.CurrentCardIndex < 0 || s.CurrentCardIndex >= len(s.CardsToStudy) {
		return SessionCard{}, false
	}
	return s.CardsToStudy[s.CurrentCardIndex], true
}

// RemainingCards returns how many cards are left in the queue.
func (s *SessionState) RemainingCards() int {
	if s.CurrentCardIndex >= len(s.CardsToStudy) {
		return 0
	}
	return len(s.CardsToStudy) - s.CurrentCardIndex
}

// Completed reports whether the cursor has passed the end of the queue.
func (s *SessionState) Completed() bool {
	return s.CurrentCardIndex >= len(s.CardsToStudy)
}

// StudySessionResult is the outcome reported to callers for session
// operations: a structured success flag plus a human-readable message.
type StudySessionResult struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Session    *SessionState      `json:"session,omitempty"`
	Statistics *SessionStatistics `json:"statistics,omitempty"`
	Accuracy   float64            `json:"accuracy"`
}
