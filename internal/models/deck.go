package models

import (
	"time"

	"github.com/google/uuid"
)

// DeckStatistics aggregates study activity across sessions.
type DeckStatistics struct {
	TotalSessions      int        `json:"total_sessions"`
	TotalStudyTime     float64    `json:"total_study_time"`
	AverageStudyTime   float64    `json:"average_study_time"`
	CardsMastered      int        `json:"cards_mastered"`
	OverallSuccessRate float64    `json:"overall_success_rate"`
	CurrentStudyStreak int        `json:"current_study_streak"`
	LongestStudyStreak int        `json:"longest_study_streak"`
	LastSessionDate    *time.Time `json:"last_session_date,omitempty"`
}

type Deck struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Cards        []Flashcard    `json:"cards"`
	Tags         []string       `json:"tags"`
	CreatedDate  time.Time      `json:"created_date"`
	LastModified time.Time      `json:"last_modified"`
	Statistics   DeckStatistics `json:"statistics"`
}

// NewDeck creates an empty deck with a fresh identity.
func NewDeck(name, description string) Deck {
	now := time.Now().UTC()
	return Deck{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		CreatedDate:  now,
		LastModified: now,
	}
}

// TotalCards returns the number of cards in the deck, active or not.
func (d *Deck) TotalCards() int {
	return len(d.Cards)
}

// ActiveCards returns the number of active cards.
func (d *Deck) ActiveCards() int {
	n := 0
	for i := range d.Cards {
		if d.Cards[i].IsActive {
			n++
		}
	}
	return n
}

// CardsInBox returns the number of active cards currently in the given box.
func (d *Deck) CardsInBox(box int) int {
	n := 0
	for i := range d.Cards {
		if d.Cards[i].IsActive && d.Cards[i].CurrentBox == box {
			n++
		}
	}
	return n
}

// CardByID returns a pointer into the deck's card slice, or nil.
func (d *Deck) CardByID(id string) *Flashcard {
	for i := range d.Cards {
		if d.Cards[i].ID == id {
			return &d.Cards[i]
		}
	}
	return nil
}

// AddCard appends a card, preserving insertion order.
func (d *Deck) AddCard(card Flashcard) {
	d.Cards = append(d.Cards, card)
	d.LastModified = time.Now().UTC()
}

// RemoveCard deletes a card by id. Returns false when the card is not in the
// deck.
func (d *Deck) RemoveCard(id string) bool {
	for i := range d.Cards {
		if d.Cards[i].ID == id {
			d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
			d.LastModified = time.Now().UTC()
			return true
		}
	}
	return false
}
