package store

import (
	"context"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	"github.com/stretchr/testify/mock"
)

// MockListStore is a mock implementation of ListStore for testing.
type MockListStore struct {
	mock.Mock
}

var _ contract.ListStore = &MockListStore{} // Compile-time check

// Exists implements the ListStore interface.
func (m *MockListStore) Exists(ctx context.Context, userID, contentID string) (bool, error) {
	args := m.Called(ctx, userID, contentID)
	return args.Bool(0), args.Error(1)
}

// Insert implements the ListStore interface.
func (m *MockListStore) Insert(ctx context.Context, entry schema.ListEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// Delete implements the ListStore interface.
func (m *MockListStore) Delete(ctx context.Context, userID, contentID string) (int64, error) {
	args := m.Called(ctx, userID, contentID)
	return args.Get(0).(int64), args.Error(1)
}

// ListPage implements the ListStore interface.
func (m *MockListStore) ListPage(ctx context.Context, userID string, offset, limit int) ([]schema.ListEntry, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	entries, _ := args.Get(0).([]schema.ListEntry)
	return entries, args.Get(1).(int64), args.Error(2)
}

// CountAll implements the ListStore interface.
func (m *MockListStore) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping implements the ListStore interface.
func (m *MockListStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// GetStatus implements the ListStore interface.
func (m *MockListStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the ListStore interface.
func (m *MockListStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCatalogStore is a mock implementation of CatalogStore for testing.
type MockCatalogStore struct {
	mock.Mock
}

var _ contract.CatalogStore = &MockCatalogStore{} // Compile-time check

// GetContent implements the CatalogStore interface.
func (m *MockCatalogStore) GetContent(ctx context.Context, id string, kind schema.ContentType) (*schema.ContentRecord, error) {
	args := m.Called(ctx, id, kind)
	rec, _ := args.Get(0).(*schema.ContentRecord)
	return rec, args.Error(1)
}
