package core

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/internal/iocache"
	"github.com/huangsam/watchlist/internal/logging"
	"github.com/huangsam/watchlist/internal/metrics"
	"github.com/huangsam/watchlist/schema"
	"golang.org/x/sync/errgroup"
)

// Operation names used in logs and metrics.
const (
	opAdd    = "add"
	opRemove = "remove"
	opGet    = "get"
)

// AddToList adds content to the user's list after confirming it exists in the catalog.
func (s *Service) AddToList(ctx context.Context, userID, contentID string, kind schema.ContentType) (entry *schema.ListEntry, err error) {
	defer func() { recordOutcome(opAdd, err) }()

	userID, err = contract.ValidateUserID(userID)
	if err != nil {
		return nil, err
	}
	contentID, err = validateContentID(contentID)
	if err != nil {
		return nil, err
	}
	if _, ok := schema.ValidContentTypes[kind]; !ok {
		return nil, schema.InvalidInput(schema.MsgContentTypeInvalid)
	}

	if _, err := s.catalog.GetContent(ctx, contentID, kind); err != nil {
		if errors.Is(err, contract.ErrContentMissing) {
			return nil, schema.ContentNotFound(kind)
		}
		return nil, schema.NewError(schema.KindDependencyUnavailable, schema.MsgCatalogUnavailable, err)
	}

	// Advisory only; the unique index decides under concurrency
	exists, err := s.store.Exists(ctx, userID, contentID)
	if err != nil {
		return nil, schema.NewError(schema.KindDependencyUnavailable, schema.MsgStoreUnavailable, err)
	}
	if exists {
		return nil, schema.NewError(schema.KindAlreadyExists, schema.MsgAlreadyExists, nil)
	}

	created := schema.ListEntry{
		ID:          s.newID(),
		UserID:      userID,
		ContentID:   contentID,
		ContentType: kind,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond), // store keeps microseconds
	}
	if err := s.store.Insert(ctx, created); err != nil {
		if errors.Is(err, contract.ErrDuplicateKey) {
			return nil, schema.NewError(schema.KindAlreadyExists, schema.MsgAlreadyExists, nil)
		}
		return nil, schema.NewError(schema.KindDependencyUnavailable, schema.MsgStoreUnavailable, err)
	}

	s.invalidate(ctx, userID, opAdd)
	logging.Ctx(ctx).Info().Str("user_id", userID).Str("content_id", contentID).Str("content_type", string(kind)).Msg("Added to list")
	return &created, nil
}

// RemoveFromList removes content from the user's list.
func (s *Service) RemoveFromList(ctx context.Context, userID, contentID string) (result *schema.RemoveResult, err error) {
	defer func() { recordOutcome(opRemove, err) }()

	userID, err = contract.ValidateUserID(userID)
	if err != nil {
		return nil, err
	}
	contentID, err = validateContentID(contentID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.store.Delete(ctx, userID, contentID)
	if err != nil {
		return nil, schema.NewError(schema.KindDependencyUnavailable, schema.MsgStoreUnavailable, err)
	}
	if deleted == 0 {
		return nil, schema.NewError(schema.KindNotFound, schema.MsgNotFound, nil)
	}

	s.invalidate(ctx, userID, opRemove)
	logging.Ctx(ctx).Info().Str("user_id", userID).Str("content_id", contentID).Msg("Removed from list")
	return &schema.RemoveResult{Message: schema.MsgRemoved}, nil
}

// GetMyList returns one page of the user's list, newest first, served from the page cache when possible.
func (s *Service) GetMyList(ctx context.Context, userID string, page, size int) (result *schema.ListPage, err error) {
	defer func() { recordOutcome(opGet, err) }()

	userID, err = contract.ValidateUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := contract.ValidatePagination(page, size); err != nil {
		return nil, err
	}

	key := iocache.CacheKey(userID, page, size)
	if cached := s.readCache(ctx, key); cached != nil {
		return cached, nil
	}

	entries, total, err := s.store.ListPage(ctx, userID, contract.Offset(page, size), size)
	if err != nil {
		return nil, schema.NewError(schema.KindDependencyUnavailable, schema.MsgStoreUnavailable, err)
	}

	items, complete, err := s.resolveItems(ctx, entries)
	if err != nil {
		return nil, err
	}
	result = &schema.ListPage{
		Items:      items,
		Pagination: schema.Pagination{Page: page, Limit: size, Total: total},
	}
	if complete {
		s.writeCache(ctx, key, result)
	}
	return result, nil
}

// resolveItems joins entries with catalog content concurrently, keeping store order.
// A failed or missing lookup leaves Content nil. complete is false when a lookup failed
// for any reason other than a missing record.
func (s *Service) resolveItems(ctx context.Context, entries []schema.ListEntry) (items []schema.ListItem, complete bool, err error) {
	items = make([]schema.ListItem, len(entries))
	var lookupFailed atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)

	for i, entry := range entries {
		items[i] = schema.ListItem{
			ID:          entry.ID,
			ContentID:   entry.ContentID,
			ContentType: entry.ContentType,
			AddedAt:     entry.CreatedAt,
		}
		g.Go(func() error {
			content, err := s.catalog.GetContent(gctx, entry.ContentID, entry.ContentType)
			if err != nil {
				if !errors.Is(err, contract.ErrContentMissing) {
					lookupFailed.Store(true)
					logging.Ctx(ctx).Warn().Err(err).Str("content_id", entry.ContentID).Msg("Content lookup failed")
				}
				metrics.ContentLookupFailures.Inc()
				return nil
			}
			items[i].Content = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	// Lookups never fail the group; a canceled request does
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return items, !lookupFailed.Load(), nil
}

// readCache returns the cached page, or nil on a miss, a cache error or an undecodable payload.
func (s *Service) readCache(ctx context.Context, key string) *schema.ListPage {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.PageCacheErrors.WithLabelValues("get").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Page cache read failed")
		metrics.PageCacheMisses.Inc()
		return nil
	}
	if raw == nil {
		metrics.PageCacheMisses.Inc()
		return nil
	}
	var page schema.ListPage
	if err := json.Unmarshal(raw, &page); err != nil {
		metrics.PageCacheErrors.WithLabelValues("decode").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Discarding undecodable cached page")
		metrics.PageCacheMisses.Inc()
		return nil
	}
	if page.Items == nil {
		page.Items = []schema.ListItem{}
	}
	metrics.PageCacheHits.Inc()
	return &page
}

// writeCache stores the page; failures are logged and ignored.
func (s *Service) writeCache(ctx context.Context, key string, page *schema.ListPage) {
	raw, err := json.Marshal(page)
	if err != nil {
		metrics.PageCacheErrors.WithLabelValues("encode").Inc()
		return
	}
	if err := s.cache.Put(ctx, key, raw, contract.PageCacheTTL); err != nil {
		metrics.PageCacheErrors.WithLabelValues("put").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Page cache write failed")
	}
}

// invalidate drops every cached page of the user. A failure leaves stale pages until their TTL lapses.
func (s *Service) invalidate(ctx context.Context, userID, op string) {
	n, err := s.cache.InvalidateUser(ctx, userID)
	if err != nil {
		metrics.PageCacheInvalidations.WithLabelValues("failure").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Str("operation", op).Msg("Page cache invalidation failed")
		return
	}
	metrics.PageCacheInvalidations.WithLabelValues("success").Inc()
	metrics.PageCacheKeysInvalidated.Add(float64(n))
	logging.Ctx(ctx).Debug().Int("keys", n).Str("user_id", userID).Str("operation", op).Msg("Page cache invalidated")
}

func validateContentID(raw string) (string, error) {
	contentID := strings.TrimSpace(raw)
	if contentID == "" {
		return "", schema.InvalidInput(schema.MsgContentIDRequired)
	}
	return contentID, nil
}

// recordOutcome counts an operation by its error kind.
func recordOutcome(op string, err error) {
	metrics.ListOperations.WithLabelValues(op, outcomeOf(err)).Inc()
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	var typed *schema.Error
	if errors.As(err, &typed) {
		return strings.ToLower(string(typed.Kind))
	}
	return "error"
}
