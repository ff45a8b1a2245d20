package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/dpereira/leitnerbox/internal/logger"
	"github.com/dpereira/leitnerbox/internal/repository"
	"github.com/dpereira/leitnerbox/internal/services"
)

// Maintenance runs periodic background tasks: checkpointing in-flight study
// sessions and expiring sessions that were abandoned without an abort.
type Maintenance struct {
	scheduler *gocron.Scheduler
	study     services.StudyService
	sessions  repository.SessionRepository
	interval  time.Duration
	staleAge  time.Duration
	log       *logger.Logger
}

// New creates a maintenance scheduler. interval controls how often active
// sessions are checkpointed; staleAge is how long an active session may sit
// without a checkpoint before it is superseded.
func New(study services.StudyService, sessions repository.SessionRepository, interval, staleAge time.Duration) *Maintenance {
	return &Maintenance{
		scheduler: gocron.NewScheduler(time.UTC),
		study:     study,
		sessions:  sessions,
		interval:  interval,
		staleAge:  staleAge,
		log:       logger.Default().WithPrefix("maintenance"),
	}
}

// Start begins running all scheduled tasks without blocking.
func (m *Maintenance) Start() {
	m.scheduler.Every(m.interval).Do(m.checkpointSessions)
	m.scheduler.Every(1).Hour().Do(m.expireStaleSessions)
	m.scheduler.StartAsync()
	m.log.Info("maintenance scheduler started: checkpoint every %v, stale cutoff %v", m.interval, m.staleAge)
}

// Stop terminates all scheduled tasks.
func (m *Maintenance) Stop() {
	m.scheduler.Stop()
	m.log.Info("maintenance scheduler stopped")
}

func (m *Maintenance) checkpointSessions() {
	ctx := logger.NewContext(context.Background(), m.log)
	n := m.study.CheckpointActiveSessions(ctx)
	if n > 0 {
		m.log.Debug("checkpointed %d sessions", n)
	}
}

func (m *Maintenance) expireStaleSessions() {
	ctx := logger.NewContext(context.Background(), m.log)
	cutoff := time.Now().UTC().Add(-m.staleAge)
	n, err := m.sessions.ExpireIdleBefore(ctx, cutoff)
	if err != nil {
		m.log.Error("failed to expire stale sessions: %v", err)
		return
	}
	if n > 0 {
		m.log.Info("superseded %d stale sessions", n)
	}
}
