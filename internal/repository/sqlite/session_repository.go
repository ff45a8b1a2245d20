package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/dpereira/leitnerbox/internal/logger"
	"github.com/dpereira/leitnerbox/internal/models"
	"github.com/dpereira/leitnerbox/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, s models.SessionState) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: id=%s, deck_id=%s, cards=%d", s.ID, s.DeckID, len(s.CardsToStudy))

	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, deck_id, study_mode, cards_to_study, current_card_index,
    studied_cards, incorrect_cards, skipped_cards,
    session_start_time, last_save_time, is_active,
    total_cards, cards_studied, correct_answers, incorrect_answers,
    total_study_time, last_activity_time)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.DeckID, string(s.StudyMode), marshalJSON(s.CardsToStudy), s.CurrentCardIndex,
		marshalJSON(s.StudiedCards), marshalJSON(s.IncorrectCards), marshalJSON(s.SkippedCards),
		s.SessionStartTime, s.LastSaveTime, s.IsActive,
		s.Statistics.TotalCards, s.Statistics.CardsStudied, s.Statistics.CorrectAnswers, s.Statistics.IncorrectAnswers,
		s.Statistics.TotalStudyTime, s.Statistics.LastActivityTime)
	if err != nil {
		log.Error("failed to insert session: %v", err)
	}
	return err
}

func (r *sessionRepository) Update(ctx context.Context, s models.SessionState) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: id=%s, index=%d, active=%v", s.ID, s.CurrentCardIndex, s.IsActive)

	res, err := r.db.ExecContext(ctx, `
UPDATE sessions
SET current_card_index = ?, studied_cards = ?, incorrect_cards = ?, skipped_cards = ?,
    last_save_time = ?, is_active = ?,
    cards_studied = ?, correct_answers = ?, incorrect_answers = ?,
    total_study_time = ?, last_activity_time = ?
WHERE id = ?
`, s.CurrentCardIndex, marshalJSON(s.StudiedCards), marshalJSON(s.IncorrectCards), marshalJSON(s.SkippedCards),
		s.LastSaveTime, s.IsActive,
		s.Statistics.CardsStudied, s.Statistics.CorrectAnswers, s.Statistics.IncorrectAnswers,
		s.Statistics.TotalStudyTime, s.Statistics.LastActivityTime,
		s.ID)
	if err != nil {
		log.Error("failed to update session: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const sessionColumns = `id, deck_id, study_mode, cards_to_study, current_card_index,
    studied_cards, incorrect_cards, skipped_cards,
    session_start_time, last_save_time, is_active,
    total_cards, cards_studied, correct_answers, incorrect_answers,
    total_study_time, last_activity_time`

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.SessionState, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%s", id)

	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) ActiveSessionForDeck(ctx context.Context, deckID string) (*models.SessionState, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting active session for deck: deck_id=%s", deckID)

	row := r.db.QueryRowContext(ctx, `
SELECT `+sessionColumns+`
FROM sessions
WHERE deck_id = ? AND is_active = 1
ORDER BY session_start_time DESC
LIMIT 1
`, deckID)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get active session: %v", err)
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) ListActive(ctx context.Context) ([]models.SessionState, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE is_active = 1 ORDER BY session_start_time`)
	if err != nil {
		log.Error("failed to list active sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.SessionState
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	log.Debug("found %d active sessions", len(sessions))
	return sessions, rows.Err()
}

// ExpireIdleBefore supersedes active sessions whose last checkpoint is older
// than the cutoff. Returns how many sessions were deactivated.
func (r *sessionRepository) ExpireIdleBefore(ctx context.Context, cutoff time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("expiring sessions idle since before %s", cutoff.Format(time.RFC3339))

	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET is_active = 0 WHERE is_active = 1 AND last_save_time < ?`, cutoff)
	if err != nil {
		log.Error("failed to expire sessions: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info("expired %d idle sessions", n)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.SessionState, error) {
	var s models.SessionState
	var mode, queue, studied, incorrect, skipped string
	err := row.Scan(&s.ID, &s.DeckID, &mode, &queue, &s.CurrentCardIndex,
		&studied, &incorrect, &skipped,
		&s.SessionStartTime, &s.LastSaveTime, &s.IsActive,
		&s.Statistics.TotalCards, &s.Statistics.CardsStudied, &s.Statistics.CorrectAnswers, &s.Statistics.IncorrectAnswers,
		&s.Statistics.TotalStudyTime, &s.Statistics.LastActivityTime)
	if err != nil {
		return nil, err
	}
	s.StudyMode = models.StudyMode(mode)
	s.Statistics.SessionStartTime = s.SessionStartTime
	if err := json.Unmarshal([]byte(queue), &s.CardsToStudy); err != nil {
		return nil, err
	}
	s.StudiedCards = unmarshalStrings(studied)
	s.IncorrectCards = unmarshalStrings(incorrect)
	s.SkippedCards = unmarshalStrings(skipped)
	return &s, nil
}

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "[]"
	}
	return string(b)
}

func unmarshalStrings(s string) []string {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
