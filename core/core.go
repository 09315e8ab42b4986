// Package core has the list service that ties the store, catalog and page cache together.
package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/iocache"
)

// resolveLimit bounds concurrent catalog lookups while assembling a page.
const resolveLimit = 8

// Service implements contract.ListService.
type Service struct {
	store   contract.ListStore
	catalog contract.CatalogStore
	cache   contract.PageCache
	now     func() time.Time
	newID   func() string
}

var _ contract.ListService = &Service{} // Compile-time check

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the clock used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the entry id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService builds the list service. A nil cache disables page caching.
func NewService(store contract.ListStore, catalog contract.CatalogStore, cache contract.PageCache, opts ...Option) *Service {
	if cache == nil {
		cache = iocache.NoneCache{}
	}
	s := &Service{
		store:   store,
		catalog: catalog,
		cache:   cache,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cacheDisabled reports whether page caching is turned off.
func (s *Service) cacheDisabled() bool {
	_, ok := s.cache.(iocache.NoneCache)
	return ok
}
