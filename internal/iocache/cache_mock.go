package iocache

import (
	"context"
	"time"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	"github.com/stretchr/testify/mock"
)

// MockPageCache is a mock implementation of PageCache for testing.
type MockPageCache struct {
	mock.Mock
}

var _ contract.PageCache = &MockPageCache{} // Compile-time check

// Get implements the PageCache interface.
func (m *MockPageCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}

// Put implements the PageCache interface.
func (m *MockPageCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// InvalidateUser implements the PageCache interface.
func (m *MockPageCache) InvalidateUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// Clear implements the PageCache interface.
func (m *MockPageCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// GetStatus implements the PageCache interface.
func (m *MockPageCache) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the PageCache interface.
func (m *MockPageCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
