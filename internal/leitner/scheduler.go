package leitner

import (
	"fmt"
	"time"

	"github.com/dpereira/leitnerbox/internal/models"
)

// Scheduler applies the Leitner ladder to individual cards. It is pure
// decision logic: no I/O, no clock access beyond the instants passed in.
type Scheduler struct {
	cfg Config
}

// NewScheduler validates the configuration and returns a Scheduler. An
// incomplete ladder is a configuration error and refuses to construct.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{cfg: cfg}, nil
}

// Config returns the immutable configuration snapshot the scheduler was
// built with.
func (s *Scheduler) Config() Config {
	return s.cfg
}

func (s *Scheduler) checkBox(box int) error {
	if box < 0 || box >= s.cfg.Boxes.NumberOfBoxes {
		return fmt.Errorf("card box %d out of range [0,%d)", box, s.cfg.Boxes.NumberOfBoxes)
	}
	return nil
}

// ProcessCorrectAnswer records a correct answer and promotes the card when
// the current box's threshold of consecutive correct answers is met. The top
// box never promotes further; meeting the threshold there leaves the box
// unchanged. An out-of-range box is a ladder misconfiguration and is
// rejected, never clamped.
func (s *Scheduler) ProcessCorrectAnswer(card *models.Flashcard) error {
	if err := s.checkBox(card.CurrentBox); err != nil {
		return err
	}

	st := &card.Statistics
	st.TotalReviews++
	st.CorrectAnswers++
	st.IncorrectStreak = 0
	st.Streak++
	if st.Streak > st.LongestStreak {
		st.LongestStreak = st.Streak
	}

	rule := s.cfg.Boxes.PromotionRules[card.CurrentBox]
	if st.Streak >= rule.CorrectAnswersNeeded && card.CurrentBox < s.cfg.TopBox() {
		card.CurrentBox++
	}
	return nil
}

// ProcessIncorrectAnswer records an incorrect answer and demotes the card
// when its box has a demotion rule and the threshold of consecutive
// incorrect answers is met. Box 0 has no demotion rule and stays put.
func (s *Scheduler) ProcessIncorrectAnswer(card *models.Flashcard) error {
	if err := s.checkBox(card.CurrentBox); err != nil {
		return err
	}

	st := &card.Statistics
	st.TotalReviews++
	st.IncorrectAnswers++
	st.Streak = 0
	st.IncorrectStreak++

	rule, ok := s.cfg.Boxes.DemotionRules[card.CurrentBox]
	if ok && st.IncorrectStreak >= rule.IncorrectAnswersNeeded {
		card.CurrentBox = rule.DemoteToBox
		st.IncorrectStreak = 0
	}
	return nil
}

// UpdateNextReviewDate schedules the card's next review from its current
// box. It must run after any box transition from the same answer so the
// interval reflects the box the card landed in, not the one it left.
func (s *Scheduler) UpdateNextReviewDate(card *models.Flashcard, now time.Time) error {
	interval, ok := s.cfg.Scheduling.BoxIntervals[card.CurrentBox]
	if !ok {
		return fmt.Errorf("no review interval configured for box %d", card.CurrentBox)
	}
	next := now.AddDate(0, 0, interval)
	reviewed := now
	card.NextReviewDate = &next
	card.LastReviewed = &reviewed
	return nil
}

// Apply runs the full per-answer pipeline: outcome processing, then
// rescheduling against the post-transition box.
func (s *Scheduler) Apply(card *models.Flashcard, correct bool, now time.Time) error {
	var err error
	if correct {
		err = s.ProcessCorrectAnswer(card)
	} else {
		err = s.ProcessIncorrectAnswer(card)
	}
	if err != nil {
		return err
	}
	return s.UpdateNextReviewDate(card, now)
}
