package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/service"
	"github.com/pageza/cookbook/backend/internal/types"
)

// MockAuthService is a mock implementation of service.IAuthService
type MockAuthService struct {
	mock.Mock
}

var _ service.IAuthService = (*MockAuthService)(nil)

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, *types.TokenPair, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	pair, _ := args.Get(1).(*types.TokenPair)
	return user, pair, args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, refresh string) (*types.TokenPair, error) {
	args := m.Called(ctx, refresh)
	pair, _ := args.Get(0).(*types.TokenPair)
	return pair, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, actor types.Identity, refresh string) error {
	args := m.Called(ctx, actor, refresh)
	return args.Error(0)
}

// Authenticate mocks the Authenticate method
func (m *MockAuthService) Authenticate(ctx context.Context, access string) (*types.Identity, error) {
	args := m.Called(ctx, access)
	id, _ := args.Get(0).(*types.Identity)
	return id, args.Error(1)
}
