package leitner

import (
	"fmt"
	"strings"
)

// PromotionRule says how many consecutive correct answers are needed to move
// a card out of a box.
type PromotionRule struct {
	CorrectAnswersNeeded int `json:"correct_answers_needed"`
}

// DemotionRule says how many consecutive incorrect answers send a card from a
// box down to DemoteToBox.
type DemotionRule struct {
	IncorrectAnswersNeeded int `json:"incorrect_answers_needed"`
	DemoteToBox            int `json:"demote_to_box"`
}

// BoxConfig is the Leitner ladder: box count plus per-box movement rules,
// keyed explicitly by box index rather than array position.
type BoxConfig struct {
	NumberOfBoxes  int                   `json:"number_of_boxes"`
	PromotionRules map[int]PromotionRule `json:"promotion_rules"`
	DemotionRules  map[int]DemotionRule  `json:"demotion_rules"`
}

// SchedulingConfig maps boxes to review intervals.
type SchedulingConfig struct {
	BoxIntervals      map[int]int `json:"box_intervals"` // days
	NewCardInterval   int         `json:"new_card_interval"`
	MaxNewCardsPerDay int         `json:"max_new_cards_per_day"`
}

// DailyLimits are advisory caps enforced by callers, not by the scheduler.
type DailyLimits struct {
	MaxCardsPerDay      int `json:"max_cards_per_day"`
	MinCardsPerDay      int `json:"min_cards_per_day"`
	MaxStudyTimeMinutes int `json:"max_study_time_minutes"`
	MinStudyTimeMinutes int `json:"min_study_time_minutes"`
}

// Config is an immutable snapshot of the Leitner configuration. It is loaded
// once per process and injected into the Scheduler and Selector at
// construction, so a running session never observes a mid-flight change.
type Config struct {
	Boxes        BoxConfig        `json:"boxes"`
	Scheduling   SchedulingConfig `json:"scheduling"`
	Limits       DailyLimits      `json:"limits"`
	ShuffleCards bool             `json:"shuffle_cards"`
}

// DefaultConfig returns the standard five-box ladder: promotion needs
// 1,2,3,4,5 consecutive correct answers, a single mistake demotes
// (1→0, 2→0, 3→1, 4→2, box 0 is the floor), and review intervals are
// 1, 3, 7, 14 and 30 days.
func DefaultConfig() Config {
	return Config{
		Boxes: BoxConfig{
			NumberOfBoxes: 5,
			PromotionRules: map[int]PromotionRule{
				0: {CorrectAnswersNeeded: 1},
				1: {CorrectAnswersNeeded: 2},
				2: {CorrectAnswersNeeded: 3},
				3: {CorrectAnswersNeeded: 4},
				4: {CorrectAnswersNeeded: 5},
			},
			DemotionRules: map[int]DemotionRule{
				1: {IncorrectAnswersNeeded: 1, DemoteToBox: 0},
				2: {IncorrectAnswersNeeded: 1, DemoteToBox: 0},
				3: {IncorrectAnswersNeeded: 1, DemoteToBox: 1},
				4: {IncorrectAnswersNeeded: 1, DemoteToBox: 2},
			},
		},
		Scheduling: SchedulingConfig{
			BoxIntervals: map[int]int{
				0: 1,
				1: 3,
				2: 7,
				3: 14,
				4: 30,
			},
			NewCardInterval:   0,
			MaxNewCardsPerDay: 20,
		},
		Limits: DailyLimits{
			MaxCardsPerDay:      100,
			MinCardsPerDay:      1,
			MaxStudyTimeMinutes: 120,
			MinStudyTimeMinutes: 5,
		},
		ShuffleCards: true,
	}
}

// Validate checks the ladder for completeness: every box 0..N-1 must have a
// promotion rule and an interval, every box except 0 must have a demotion
// rule, and box 0 must not. All problems are reported at once.
func (c Config) Validate() error {
	var problems []string

	if c.Boxes.NumberOfBoxes < 1 {
		problems = append(problems, fmt.Sprintf("number_of_boxes must be at least 1, got %d", c.Boxes.NumberOfBoxes))
	}

	for box := 0; box < c.Boxes.NumberOfBoxes; box++ {
		rule, ok := c.Boxes.PromotionRules[box]
		if !ok {
			problems = append(problems, fmt.Sprintf("box %d has no promotion rule", box))
		} else if rule.CorrectAnswersNeeded < 1 {
			problems = append(problems, fmt.Sprintf("box %d promotion threshold must be at least 1", box))
		}

		if _, ok := c.Scheduling.BoxIntervals[box]; !ok {
			problems = append(problems, fmt.Sprintf("box %d has no review interval", box))
		} else if c.Scheduling.BoxIntervals[box] < 1 {
			problems = append(problems, fmt.Sprintf("box %d review interval must be at least 1 day", box))
		}

		dem, ok := c.Boxes.DemotionRules[box]
		if box == 0 {
			if ok {
				problems = append(problems, "box 0 must not have a demotion rule, it is the floor")
			}
			continue
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("box %d has no demotion rule", box))
			continue
		}
		if dem.IncorrectAnswersNeeded < 1 {
			problems = append(problems, fmt.Sprintf("box %d demotion threshold must be at least 1", box))
		}
		if dem.DemoteToBox < 0 || dem.DemoteToBox >= box {
			problems = append(problems, fmt.Sprintf("box %d demotes to invalid box %d", box, dem.DemoteToBox))
		}
	}

	for box := range c.Boxes.PromotionRules {
		if box < 0 || box >= c.Boxes.NumberOfBoxes {
			problems = append(problems, fmt.Sprintf("promotion rule references unknown box %d", box))
		}
	}
	for box := range c.Boxes.DemotionRules {
		if box < 0 || box >= c.Boxes.NumberOfBoxes {
			problems = append(problems, fmt.Sprintf("demotion rule references unknown box %d", box))
		}
	}
	for box := range c.Scheduling.BoxIntervals {
		if box < 0 || box >= c.Boxes.NumberOfBoxes {
			problems = append(problems, fmt.Sprintf("interval references unknown box %d", box))
		}
	}

	if c.Scheduling.NewCardInterval < 0 {
		problems = append(problems, "new_card_interval cannot be negative")
	}
	if c.Scheduling.MaxNewCardsPerDay < 0 {
		problems = append(problems, "max_new_cards_per_day cannot be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid leitner configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// TopBox returns the index of the highest box.
func (c Config) TopBox() int {
	return c.Boxes.NumberOfBoxes - 1
}
