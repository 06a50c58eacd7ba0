package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/escaperoom/internal/models"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) RecordStart(ctx context.Context, attempt models.Attempt, profile *models.PlayerProfile) (int64, error) {
	args := m.Called(ctx, attempt, profile)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProgressRepository) RecordCompletion(ctx context.Context, attempt models.Attempt, profile *models.PlayerProfile) error {
	args := m.Called(ctx, attempt, profile)
	return args.Error(0)
}
