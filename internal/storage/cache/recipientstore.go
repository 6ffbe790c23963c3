package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tinywideclouds/go-booking-push-service/pkg/dispatch"
)

// CacheClient defines the subset of Redis commands we need.
type CacheClient interface {
	// Get fills dest or returns an error; any error is treated as a miss.
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedRecipientStore adds read-aside caching to any RecipientStore.
// Only found recipients are cached, so a newly created user is visible
// on the next lookup.
type CachedRecipientStore struct {
	realStore dispatch.RecipientStore
	cache     CacheClient
	ttl       time.Duration
	logger    *slog.Logger
}

func NewCachedRecipientStore(realStore dispatch.RecipientStore, cache CacheClient, ttl time.Duration, logger *slog.Logger) *CachedRecipientStore {
	return &CachedRecipientStore{
		realStore: realStore,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.With("component", "CachedRecipientStore"),
	}
}

func (s *CachedRecipientStore) Lookup(ctx context.Context, recipientID string) (*dispatch.Recipient, error) {
	key := CacheKey(recipientID)

	var cached dispatch.Recipient
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		s.logger.Warn("Cache read failed, falling back to store", "key", key, "err", err)
	}

	fresh, err := s.realStore.Lookup(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	// A failed write still serves the fresh record.
	if err := s.cache.Set(ctx, key, fresh, s.ttl); err != nil {
		s.logger.Warn("Cache write failed", "key", key, "err", err)
	}
	return fresh, nil
}

func CacheKey(recipientID string) string {
	return "bookingpush:recipient:" + recipientID
}
