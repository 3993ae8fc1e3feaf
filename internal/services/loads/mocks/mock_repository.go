package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/BearBump/DriverComm/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListLoads(ctx context.Context) ([]*models.Load, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*models.Load)
	return out, args.Error(1)
}

func (m *MockRepository) GetLoad(ctx context.Context, id string) (*models.Load, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Load)
	return out, args.Error(1)
}

func (m *MockRepository) UpsertLoad(ctx context.Context, l *models.Load) (*models.Load, error) {
	args := m.Called(ctx, l)
	out, _ := args.Get(0).(*models.Load)
	return out, args.Error(1)
}

func (m *MockRepository) PatchLoad(ctx context.Context, id string, p models.LoadPatch) (*models.Load, error) {
	args := m.Called(ctx, id, p)
	out, _ := args.Get(0).(*models.Load)
	return out, args.Error(1)
}

func (m *MockRepository) DeleteLoad(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListMessages(ctx context.Context, loadID string) ([]*models.Message, error) {
	args := m.Called(ctx, loadID)
	out, _ := args.Get(0).([]*models.Message)
	return out, args.Error(1)
}
