package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/dpereira/leitnerbox/internal/logger"
	"github.com/dpereira/leitnerbox/internal/models"
	"github.com/dpereira/leitnerbox/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Insert(ctx context.Context, deck models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: id=%s, name=%s", deck.ID, deck.Name)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		if err := insertDeckRow(ctx, t, deck); err != nil {
			return err
		}
		return insertCards(ctx, t, deck)
	})
}

// Save writes the deck row and replaces its card set in one transaction, so
// card removals and reorderings survive a round-trip.
func (r *deckRepository) Save(ctx context.Context, deck models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("saving deck: id=%s, cards=%d", deck.ID, len(deck.Cards))

	return tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
UPDATE decks
SET name = ?, description = ?, tags = ?, last_modified = ?,
    total_sessions = ?, total_study_time = ?, average_study_time = ?,
    cards_mastered = ?, overall_success_rate = ?,
    current_study_streak = ?, longest_study_streak = ?, last_session_date = ?
WHERE id = ?
`, deck.Name, deck.Description, marshalTags(deck.Tags), deck.LastModified,
			deck.Statistics.TotalSessions, deck.Statistics.TotalStudyTime, deck.Statistics.AverageStudyTime,
			deck.Statistics.CardsMastered, deck.Statistics.OverallSuccessRate,
			deck.Statistics.CurrentStudyStreak, deck.Statistics.LongestStudyStreak, nullTime(deck.Statistics.LastSessionDate),
			deck.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}

		if _, err := t.ExecContext(ctx, `DELETE FROM flashcards WHERE deck_id = ?`, deck.ID); err != nil {
			return err
		}
		return insertCards(ctx, t, deck)
	})
}

func insertDeckRow(ctx context.Context, t *sql.Tx, deck models.Deck) error {
	_, err := t.ExecContext(ctx, `
INSERT INTO decks (id, name, description, tags, created_date, last_modified,
    total_sessions, total_study_time, average_study_time, cards_mastered,
    overall_success_rate, current_study_streak, longest_study_streak, last_session_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, deck.ID, deck.Name, deck.Description, marshalTags(deck.Tags), deck.CreatedDate, deck.LastModified,
		deck.Statistics.TotalSessions, deck.Statistics.TotalStudyTime, deck.Statistics.AverageStudyTime,
		deck.Statistics.CardsMastered, deck.Statistics.OverallSuccessRate,
		deck.Statistics.CurrentStudyStreak, deck.Statistics.LongestStudyStreak, nullTime(deck.Statistics.LastSessionDate))
	return err
}

func insertCards(ctx context.Context, t *sql.Tx, deck models.Deck) error {
	for i, c := range deck.Cards {
		_, err := t.ExecContext(ctx, `
INSERT INTO flashcards (id, deck_id, position, front, back, tags, current_box, is_active,
    created_date, last_reviewed, next_review_date,
    total_reviews, correct_answers, incorrect_answers, incorrect_streak,
    average_response_time, total_study_time, last_study_session, streak, longest_streak)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.ID, deck.ID, i, c.Front, c.Back, marshalTags(c.Tags), c.CurrentBox, c.IsActive,
			c.CreatedDate, nullTime(c.LastReviewed), nullTime(c.NextReviewDate),
			c.Statistics.TotalReviews, c.Statistics.CorrectAnswers, c.Statistics.IncorrectAnswers, c.Statistics.IncorrectStreak,
			c.Statistics.AverageResponseTime, c.Statistics.TotalStudyTime, nullTime(c.Statistics.LastStudySession),
			c.Statistics.Streak, c.Statistics.LongestStreak)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *deckRepository) Get(ctx context.Context, id string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck: id=%s", id)

	var d models.Deck
	var tags string
	var lastSession sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, description, tags, created_date, last_modified,
       total_sessions, total_study_time, average_study_time, cards_mastered,
       overall_success_rate, current_study_streak, longest_study_streak, last_session_date
FROM decks
WHERE id = ?
`, id).Scan(&d.ID, &d.Name, &d.Description, &tags, &d.CreatedDate, &d.LastModified,
		&d.Statistics.TotalSessions, &d.Statistics.TotalStudyTime, &d.Statistics.AverageStudyTime,
		&d.Statistics.CardsMastered, &d.Statistics.OverallSuccessRate,
		&d.Statistics.CurrentStudyStreak, &d.Statistics.LongestStudyStreak, &lastSession)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("deck not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, err
	}
	d.Tags = unmarshalTags(tags)
	d.Statistics.LastSessionDate = timePtr(lastSession)

	cards, err := r.cardsForDeck(ctx, id)
	if err != nil {
		log.Error("failed to load deck cards: %v", err)
		return nil, err
	}
	d.Cards = cards
	return &d, nil
}

func (r *deckRepository) cardsForDeck(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, deck_id, front, back, tags, current_box, is_active, created_date,
       last_reviewed, next_review_date,
       total_reviews, correct_answers, incorrect_answers, incorrect_streak,
       average_response_time, total_study_time, last_study_session, streak, longest_streak
FROM flashcards
WHERE deck_id = ?
ORDER BY position
`, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		var c models.Flashcard
		var tags string
		var lastReviewed, nextReview, lastStudy sql.NullTime
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &tags, &c.CurrentBox, &c.IsActive, &c.CreatedDate,
			&lastReviewed, &nextReview,
			&c.Statistics.TotalReviews, &c.Statistics.CorrectAnswers, &c.Statistics.IncorrectAnswers, &c.Statistics.IncorrectStreak,
			&c.Statistics.AverageResponseTime, &c.Statistics.TotalStudyTime, &lastStudy,
			&c.Statistics.Streak, &c.Statistics.LongestStreak); err != nil {
			return nil, err
		}
		c.Tags = unmarshalTags(tags)
		c.LastReviewed = timePtr(lastReviewed)
		c.NextReviewDate = timePtr(nextReview)
		c.Statistics.LastStudySession = timePtr(lastStudy)
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *deckRepository) List(ctx context.Context, filter repository.DeckFilter) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks: name_like=%q, tag=%q", filter.NameLike, filter.Tag)

	query := sqlBuilder.
		Select("id", "name", "description", "tags", "created_date", "last_modified",
			"total_sessions", "total_study_time", "average_study_time", "cards_mastered",
			"overall_success_rate", "current_study_streak", "longest_study_streak", "last_session_date").
		From("decks")
	query = applyDeckFilter(query, filter)

	// Safe ORDER BY with validation
	orderBy := "last_modified"
	if filter.OrderBy == "name" {
		orderBy = "name"
	}
	orderDir := "DESC"
	if filter.OrderDir == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query = query.Limit(uint64(limit)).Offset(uint64(filter.Offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		var tags string
		var lastSession sql.NullTime
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &tags, &d.CreatedDate, &d.LastModified,
			&d.Statistics.TotalSessions, &d.Statistics.TotalStudyTime, &d.Statistics.AverageStudyTime,
			&d.Statistics.CardsMastered, &d.Statistics.OverallSuccessRate,
			&d.Statistics.CurrentStudyStreak, &d.Statistics.LongestStudyStreak, &lastSession); err != nil {
			return nil, err
		}
		d.Tags = unmarshalTags(tags)
		d.Statistics.LastSessionDate = timePtr(lastSession)
		decks = append(decks, d)
	}
	log.Debug("found %d decks", len(decks))
	return decks, rows.Err()
}

func (r *deckRepository) Count(ctx context.Context, filter repository.DeckFilter) (int, error) {
	query := applyDeckFilter(sqlBuilder.Select("COUNT(*)").From("decks"), filter)
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n)
	return n, err
}

func applyDeckFilter(query squirrel.SelectBuilder, filter repository.DeckFilter) squirrel.SelectBuilder {
	if filter.NameLike != "" {
		query = query.Where(squirrel.Like{"name": "%" + filter.NameLike + "%"})
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array of strings.
		query = query.Where(squirrel.Like{"tags": `%"` + filter.Tag + `"%`})
	}
	return query
}

func (r *deckRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete deck: %v", err)
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

func (r *deckRepository) CountDue(ctx context.Context, deckID string, now time.Time) (int, error) {
	query := sqlBuilder.
		Select("COUNT(*)").
		From("flashcards").
		Where(squirrel.Eq{"deck_id": deckID, "is_active": true}).
		Where(squirrel.Or{
			squirrel.Eq{"next_review_date": nil},
			squirrel.LtOrEq{"next_review_date": now},
		})
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n)
	return n, err
}

func marshalTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func unmarshalTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
