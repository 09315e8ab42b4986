package core

import (
	"context"

	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
	"github.com/stretchr/testify/mock"
)

// MockListService is a mock implementation of ListService for testing.
type MockListService struct {
	mock.Mock
}

var _ contract.ListService = &MockListService{} // Compile-time check

// AddToList implements the ListService interface.
func (m *MockListService) AddToList(ctx context.Context, userID, contentID string, kind schema.ContentType) (*schema.ListEntry, error) {
	args := m.Called(ctx, userID, contentID, kind)
	entry, _ := args.Get(0).(*schema.ListEntry)
	return entry, args.Error(1)
}

// RemoveFromList implements the ListService interface.
func (m *MockListService) RemoveFromList(ctx context.Context, userID, contentID string) (*schema.RemoveResult, error) {
	args := m.Called(ctx, userID, contentID)
	result, _ := args.Get(0).(*schema.RemoveResult)
	return result, args.Error(1)
}

// GetMyList implements the ListService interface.
func (m *MockListService) GetMyList(ctx context.Context, userID string, page, size int) (*schema.ListPage, error) {
	args := m.Called(ctx, userID, page, size)
	result, _ := args.Get(0).(*schema.ListPage)
	return result, args.Error(1)
}

// Health implements the ListService interface.
func (m *MockListService) Health(ctx context.Context) schema.HealthReport {
	args := m.Called(ctx)
	return args.Get(0).(schema.HealthReport)
}
