package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dpereira/leitnerbox/internal/errors"
	"github.com/dpereira/leitnerbox/internal/leitner"
	"github.com/dpereira/leitnerbox/internal/logger"
	"github.com/dpereira/leitnerbox/internal/models"
	"github.com/dpereira/leitnerbox/internal/repository"
	"github.com/dpereira/leitnerbox/internal/worker"
)

// NoCardsMessage is the user-facing message for a session that cannot start
// because nothing is eligible for study.
const NoCardsMessage = "No cards available for study at this time."

// StudyService orchestrates study sessions: queue selection, per-answer box
// transitions, progress tracking and pause/resume.
type StudyService interface {
	StartSession(ctx context.Context, deckID string, mode models.StudyMode, maxCards int) (*models.StudySessionResult, error)
	GetSession(ctx context.Context, sessionID string) (*models.SessionState, error)
	SubmitAnswer(ctx context.Context, sessionID, cardID string, correct bool, responseTime float64) (*models.StudySessionResult, error)
	Skip(ctx context.Context, sessionID, cardID string) (*models.StudySessionResult, error)
	Pause(ctx context.Context, sessionID string) error
	Resume(ctx context.Context, sessionID string) (*models.SessionState, error)
	Abort(ctx context.Context, sessionID string) error
	CheckpointActiveSessions(ctx context.Context) int
}

// activeSession pairs a session with the deck it exclusively owns while
// running. The deck is loaded once at start (or resume) and written back
// through explicit saves, never shared.
type activeSession struct {
	state *models.SessionState
	deck  *models.Deck
}

type studyService struct {
	decks     repository.DeckRepository
	sessions  repository.SessionRepository
	scheduler *leitner.Scheduler
	selector  *leitner.Selector
	pool      *worker.Pool // nil means checkpoints run inline

	mu     sync.Mutex
	active map[string]*activeSession // session id -> session
	byDeck map[string]string         // deck id -> session id
}

// NewStudyService creates a new StudyService. The pool is optional; without
// it checkpoints are written synchronously.
func NewStudyService(decks repository.DeckRepository, sessions repository.SessionRepository, scheduler *leitner.Scheduler, selector *leitner.Selector, pool *worker.Pool) StudyService {
	return &studyService{
		decks:     decks,
		sessions:  sessions,
		scheduler: scheduler,
		selector:  selector,
		pool:      pool,
		active:    make(map[string]*activeSession),
		byDeck:    make(map[string]string),
	}
}

func (s *studyService) StartSession(ctx context.Context, deckID string, mode models.StudyMode, maxCards int) (*models.StudySessionResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting study session: deck_id=%s, mode=%s, max_cards=%d", deckID, mode, maxCards)

	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID, ok := s.byDeck[deckID]; ok {
		return nil, errors.NewConflictError(fmt.Sprintf("deck already has an active session: %s", sessionID))
	}

	// A paused or crashed session still owns the deck until resumed,
	// aborted or expired.
	existing, err := s.sessions.ActiveSessionForDeck(ctx, deckID)
	if err != nil {
		log.Error("failed to check for active session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if existing != nil {
		return nil, errors.NewConflictError(fmt.Sprintf("deck already has an active session: %s", existing.ID))
	}

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	now := time.Now().UTC()
	queue := s.selector.SelectCards(deck, mode, maxCards, now)
	if len(queue) == 0 {
		log.Debug("no cards available: deck_id=%s, max_cards=%d", deckID, maxCards)
		return &models.StudySessionResult{Success: false, Message: NoCardsMessage}, nil
	}

	state := models.NewSessionState(deckID, mode, queue, now)
	if err := s.sessions.Insert(ctx, *state); err != nil {
		log.Error("failed to persist session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	s.active[state.ID] = &activeSession{state: state, deck: deck}
	s.byDeck[deckID] = state.ID

	log.Info("study session started: id=%s, deck_id=%s, cards=%d", state.ID, deckID, len(queue))
	return &models.StudySessionResult{
		Success: true,
		Message: "Study session started.",
		Session: state,
	}, nil
}

func (s *studyService) GetSession(ctx context.Context, sessionID string) (*models.SessionState, error) {
	s.mu.Lock()
	if sess, ok := s.active[sessionID]; ok {
		state := *sess.state
		s.mu.Unlock()
		return &state, nil
	}
	s.mu.Unlock()

	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if state == nil {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	return state, nil
}

func (s *studyService) SubmitAnswer(ctx context.Context, sessionID, cardID string, correct bool, responseTime float64) (*models.StudySessionResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting answer: session_id=%s, card_id=%s, correct=%v", sessionID, cardID, correct)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[sessionID]
	if !ok {
		return nil, errors.NewConflictError("session is not active")
	}
	state := sess.state

	current, ok := state.CurrentCard()
	if !ok {
		return nil, errors.NewConflictError("session queue is exhausted")
	}
	if current.CardID != cardID {
		return nil, errors.NewConflictError("card is not the current card in this session")
	}

	card := sess.deck.CardByID(cardID)
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", cardID)
	}

	now := time.Now().UTC()
	// Box transition and rescheduling together; the interval always
	// reflects the box the card landed in.
	if err := s.scheduler.Apply(card, correct, now); err != nil {
		log.Error("scheduler rejected answer: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if responseTime < 0 {
		responseTime = 0
	}
	cst := &card.Statistics
	cst.TotalStudyTime += responseTime
	cst.AverageResponseTime = models.Round2((cst.AverageResponseTime*float64(cst.TotalReviews-1) + responseTime) / float64(cst.TotalReviews))
	cst.LastStudySession = &now

	state.StudiedCards = append(state.StudiedCards, cardID)
	if !correct {
		state.IncorrectCards = append(state.IncorrectCards, cardID)
	}
	st := &state.Statistics
	st.CardsStudied++
	if correct {
		st.CorrectAnswers++
	} else {
		st.IncorrectAnswers++
	}
	st.TotalStudyTime += responseTime
	st.LastActivityTime = now
	state.CurrentCardIndex++
	sess.deck.LastModified = now

	log.Debug("answer applied: card_id=%s, new_box=%d, remaining=%d", cardID, card.CurrentBox, state.RemainingCards())

	if state.Completed() {
		return s.completeLocked(ctx, sess, now)
	}

	s.checkpointLocked(ctx, sess, now)
	return &models.StudySessionResult{
		Success:  true,
		Message:  "Answer recorded.",
		Session:  state,
		Accuracy: st.SuccessRate(),
	}, nil
}

func (s *studyService) Skip(ctx context.Context, sessionID, cardID string) (*models.StudySessionResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("skipping card: session_id=%s, card_id=%s", sessionID, cardID)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[sessionID]
	if !ok {
		return nil, errors.NewConflictError("session is not active")
	}
	state := sess.state

	current, ok := state.CurrentCard()
	if !ok {
		return nil, errors.NewConflictError("session queue is exhausted")
	}
	// Skipping a card the cursor already moved past is a no-op, so a
	// repeated skip never double-counts.
	if current.CardID != cardID {
		log.Debug("skip ignored, card is not current: card_id=%s", cardID)
		return &models.StudySessionResult{
			Success:  true,
			Message:  "Card already passed.",
			Session:  state,
			Accuracy: state.Statistics.SuccessRate(),
		}, nil
	}

	now := time.Now().UTC()
	state.SkippedCards = append(state.SkippedCards, cardID)
	state.Statistics.LastActivityTime = now
	state.CurrentCardIndex++

	if state.Completed() {
		return s.completeLocked(ctx, sess, now)
	}

	s.checkpointLocked(ctx, sess, now)
	return &models.StudySessionResult{
		Success:  true,
		Message:  "Card skipped.",
		Session:  state,
		Accuracy: state.Statistics.SuccessRate(),
	}, nil
}

// completeLocked finalizes a session whose queue is exhausted. Caller holds
// the mutex.
func (s *studyService) completeLocked(ctx context.Context, sess *activeSession, now time.Time) (*models.StudySessionResult, error) {
	log := logger.FromContext(ctx)

	state := sess.state
	state.IsActive = false
	state.LastSaveTime = now
	s.finalizeDeckStatistics(sess.deck, state, now)

	delete(s.active, state.ID)
	delete(s.byDeck, state.DeckID)

	message := "Study session completed."
	// Terminal saves run inline; a failure is recoverable and reported in
	// the result, and never rolls back applied box transitions.
	if err := s.sessions.Update(ctx, *state); err != nil {
		log.Error("failed to save completed session: %v", err)
		message = fmt.Sprintf("Study session completed, but progress could not be saved: %v", err)
	}
	if err := s.decks.Save(ctx, *sess.deck); err != nil {
		log.Error("failed to save deck after session: %v", err)
		message = fmt.Sprintf("Study session completed, but deck could not be saved: %v", err)
	}

	stats := state.Statistics
	log.Info("study session completed: id=%s, studied=%d, accuracy=%.2f", state.ID, stats.CardsStudied, stats.SuccessRate())
	return &models.StudySessionResult{
		Success:    true,
		Message:    message,
		Session:    state,
		Statistics: &stats,
		Accuracy:   stats.SuccessRate(),
	}, nil
}

// finalizeDeckStatistics folds a completed session into the deck aggregates.
func (s *studyService) finalizeDeckStatistics(deck *models.Deck, state *models.SessionState, now time.Time) {
	st := &deck.Statistics
	st.TotalSessions++
	st.TotalStudyTime += state.Statistics.TotalStudyTime
	st.AverageStudyTime = models.Round2(st.TotalStudyTime / float64(st.TotalSessions))
	st.CardsMastered = deck.CardsInBox(s.scheduler.Config().TopBox())

	var correct, total int
	for i := range deck.Cards {
		correct += deck.Cards[i].Statistics.CorrectAnswers
		total += deck.Cards[i].Statistics.TotalReviews
	}
	if total > 0 {
		st.OverallSuccessRate = models.Round2(float64(correct) / float64(total) * 100)
	} else {
		st.OverallSuccessRate = 0
	}

	today := now.Truncate(24 * time.Hour)
	switch {
	case st.LastSessionDate == nil:
		st.CurrentStudyStreak = 1
	case st.LastSessionDate.Truncate(24 * time.Hour).Equal(today):
		// second session today, streak unchanged
	case st.LastSessionDate.Truncate(24 * time.Hour).Equal(today.AddDate(0, 0, -1)):
		st.CurrentStudyStreak++
	default:
		st.CurrentStudyStreak = 1
	}
	if st.CurrentStudyStreak > st.LongestStudyStreak {
		st.LongestStudyStreak = st.CurrentStudyStreak
	}
	sessionDate := now
	st.LastSessionDate = &sessionDate
	deck.LastModified = now
}

// checkpointLocked persists the session and deck without blocking the
// caller. Caller holds the mutex.
func (s *studyService) checkpointLocked(ctx context.Context, sess *activeSession, now time.Time) {
	log := logger.FromContext(ctx)
	sess.state.LastSaveTime = now

	if s.pool == nil {
		if err := s.sessions.Update(ctx, *sess.state); err != nil {
			log.Warn("session checkpoint failed: %v", err)
		}
		if err := s.decks.Save(ctx, *sess.deck); err != nil {
			log.Warn("deck checkpoint failed: %v", err)
		}
		return
	}

	s.pool.TrySubmit(&worker.SaveSessionJob{Sessions: s.sessions, State: *sess.state})
	s.pool.TrySubmit(&worker.SaveDeckJob{Decks: s.decks, Deck: *sess.deck})
}

func (s *studyService) Pause(ctx context.Context, sessionID string) error {
	log := logger.FromContext(ctx)
	log.Debug("pausing session: id=%s", sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[sessionID]
	if !ok {
		return errors.NewConflictError("session is not active")
	}

	now := time.Now().UTC()
	sess.state.LastSaveTime = now

	// Pause persists inline so the snapshot is durable before ownership
	// is released. On failure the session stays live in memory.
	if err := s.sessions.Update(ctx, *sess.state); err != nil {
		log.Error("failed to save paused session: %v", err)
		return errors.NewInternalError(err)
	}
	if err := s.decks.Save(ctx, *sess.deck); err != nil {
		log.Error("failed to save deck on pause: %v", err)
		return errors.NewInternalError(err)
	}

	delete(s.active, sessionID)
	delete(s.byDeck, sess.state.DeckID)
	log.Info("session paused: id=%s, index=%d", sessionID, sess.state.CurrentCardIndex)
	return nil
}

func (s *studyService) Resume(ctx context.Context, sessionID string) (*models.SessionState, error) {
	log := logger.FromContext(ctx)
	log.Debug("resuming session: id=%s", sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[sessionID]; ok {
		return nil, errors.NewConflictError("session is already running")
	}

	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		log.Error("failed to load session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if state == nil {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	if !state.IsActive {
		return nil, errors.NewConflictError("session has already ended")
	}
	if otherID, ok := s.byDeck[state.DeckID]; ok {
		return nil, errors.NewConflictError(fmt.Sprintf("deck already has an active session: %s", otherID))
	}

	deck, err := s.decks.Get(ctx, state.DeckID)
	if err != nil {
		log.Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", state.DeckID)
	}

	s.active[state.ID] = &activeSession{state: state, deck: deck}
	s.byDeck[state.DeckID] = state.ID

	log.Info("session resumed: id=%s, index=%d, remaining=%d", state.ID, state.CurrentCardIndex, state.RemainingCards())
	return state, nil
}

func (s *studyService) Abort(ctx context.Context, sessionID string) error {
	log := logger.FromContext(ctx)
	log.Debug("aborting session: id=%s", sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	if sess, ok := s.active[sessionID]; ok {
		sess.state.IsActive = false
		sess.state.LastSaveTime = now

		// Box transitions already applied stay applied; only the
		// snapshot and deck need to be flushed. On failure the session
		// stays in memory so the caller can retry, like Pause.
		if err := s.sessions.Update(ctx, *sess.state); err != nil {
			log.Error("failed to save aborted session: %v", err)
			sess.state.IsActive = true
			return errors.NewInternalError(err)
		}
		if err := s.decks.Save(ctx, *sess.deck); err != nil {
			log.Error("failed to save deck on abort: %v", err)
			return errors.NewInternalError(err)
		}
		delete(s.active, sessionID)
		delete(s.byDeck, sess.state.DeckID)
		log.Info("session aborted: id=%s", sessionID)
		return nil
	}

	// Not in memory: a paused or orphaned session can still be aborted,
	// and aborting an already-ended session is a no-op.
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		log.Error("failed to load session: %v", err)
		return errors.NewInternalError(err)
	}
	if state == nil {
		return errors.NewNotFoundError("session", sessionID)
	}
	if !state.IsActive {
		return nil
	}

	state.IsActive = false
	state.LastSaveTime = now
	if err := s.sessions.Update(ctx, *state); err != nil {
		log.Error("failed to save aborted session: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("session aborted: id=%s", sessionID)
	return nil
}

// CheckpointActiveSessions flushes a snapshot of every running session.
// Called periodically by the maintenance scheduler.
func (s *studyService) CheckpointActiveSessions(ctx context.Context) int {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, sess := range s.active {
		s.checkpointLocked(ctx, sess, now)
	}
	if len(s.active) > 0 {
		log.Debug("checkpointed %d active sessions", len(s.active))
	}
	return len(s.active)
}
