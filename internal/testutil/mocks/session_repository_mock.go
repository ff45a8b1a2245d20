package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dpereira/leitnerbox/internal/models"
)

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Insert(ctx context.Context, state models.SessionState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockSessionRepository) Update(ctx context.Context, state models.SessionState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*models.SessionState, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionState), args.Error(1)
}

func (m *MockSessionRepository) ActiveSessionForDeck(ctx context.Context, deckID string) (*models.SessionState, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionState), args.Error(1)
}

func (m *MockSessionRepository) ListActive(ctx context.Context) ([]models.SessionState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionState), args.Error(1)
}

func (m *MockSessionRepository) ExpireIdleBefore(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}
