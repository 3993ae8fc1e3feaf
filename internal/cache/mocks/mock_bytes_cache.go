package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockBytesCache: testify-мок cache.BytesCache.
type MockBytesCache struct {
	mock.Mock
}

func (m *MockBytesCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Bool(1), args.Error(2)
}

func (m *MockBytesCache) Version(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	v, _ := args.Get(0).(int64)
	return v, args.Error(1)
}

func (m *MockBytesCache) SetIfVersion(ctx context.Context, key string, version int64, value []byte, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, version, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockBytesCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
