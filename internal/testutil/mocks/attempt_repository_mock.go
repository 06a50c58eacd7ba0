package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/escaperoom/internal/models"
)

// MockAttemptRepository is a mock implementation of repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Get(ctx context.Context, id int64) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) List(ctx context.Context, filter models.AttemptFilter) ([]models.Attempt, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Count(ctx context.Context, playerID string, puzzleID int) (int, error) {
	args := m.Called(ctx, playerID, puzzleID)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepository) Active(ctx context.Context, playerID string, puzzleID int) (*models.Attempt, error) {
	args := m.Called(ctx, playerID, puzzleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) UpdateHints(ctx context.Context, id int64, hintsUsed int) error {
	args := m.Called(ctx, id, hintsUsed)
	return args.Error(0)
}
