package cache

import (
	"context"
	"time"

	"roombook/api"
	"roombook/models"
	"roombook/utils"

	"go.uber.org/zap"
)

// CachedClient decorates an api.Client with read-through caching for the four
// read result sets: rooms, profile, my-bookings, and per-(room, date)
// availability. Writes pass straight through; the workflow controller decides
// what to invalidate and when.
type CachedClient struct {
	api.Client
	Cache Coordinator
	TTL   time.Duration
}

// NewCachedClient wraps inner with cache c. ttl bounds how long a cached read
// is served before the next call refetches.
func NewCachedClient(inner api.Client, c Coordinator, ttl time.Duration) *CachedClient {
	return &CachedClient{Client: inner, Cache: c, TTL: ttl}
}

// getThrough serves key from the cache, or fetches and stores on a miss.
// Cache failures degrade to a plain fetch.
func getThrough[T any](ctx context.Context, c *CachedClient, key string, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := c.Cache.Get(ctx, key, &cached)
	if err != nil {
		utils.GetLogger().Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return cached, nil
	}
	fresh, err := fetch(ctx)
	if err != nil {
		return fresh, err
	}
	if err := c.Cache.Set(ctx, key, fresh, c.TTL); err != nil {
		utils.GetLogger().Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return fresh, nil
}

func (c *CachedClient) ListRooms(ctx context.Context) ([]models.Room, error) {
	return getThrough(ctx, c, KeyRooms, c.Client.ListRooms)
}

func (c *CachedClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	return getThrough(ctx, c, KeyProfile, c.Client.GetProfile)
}

func (c *CachedClient) MyBookings(ctx context.Context) ([]models.Booking, error) {
	return getThrough(ctx, c, KeyMyBookings, c.Client.MyBookings)
}

func (c *CachedClient) GetAvailability(ctx context.Context, roomID int, date string) (*models.Availability, error) {
	key := KeyAvailability(roomID, date)
	return getThrough(ctx, c, key, func(ctx context.Context) (*models.Availability, error) {
		return c.Client.GetAvailability(ctx, roomID, date)
	})
}
