package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/escaperoom/internal/models"
)

// MockProfileRepository is a mock implementation of repository.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Get(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerProfile), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.PlayerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *models.PlayerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]*models.PlayerProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlayerProfile), args.Error(1)
}
