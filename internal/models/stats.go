package models

import "time"

// BoxCount is the number of active cards in one box, with the box's review
// interval for display.
type BoxCount struct {
	Box          int `json:"box"`
	Count        int `json:"count"`
	IntervalDays int `json:"interval_days"`
}

// DeckSummary is the dashboard view of a single deck.
type DeckSummary struct {
	DeckID          string         `json:"deck_id"`
	Name            string         `json:"name"`
	TotalCards      int            `json:"total_cards"`
	ActiveCards     int            `json:"active_cards"`
	DueNow          int            `json:"due_now"`
	NewCards        int            `json:"new_cards"`
	BoxDistribution []BoxCount     `json:"box_distribution"`
	Statistics      DeckStatistics `json:"statistics"`
}

// CardStat is the per-card statistics row for dashboards.
type CardStat struct {
	CardID         string     `json:"card_id"`
	Front          string     `json:"front"`
	CurrentBox     int        `json:"current_box"`
	IsActive       bool       `json:"is_active"`
	TotalReviews   int        `json:"total_reviews"`
	SuccessRate    float64    `json:"success_rate"`
	Streak         int        `json:"streak"`
	LongestStreak  int        `json:"longest_streak"`
	NextReviewDate *time.Time `json:"next_review_date,omitempty"`
}
