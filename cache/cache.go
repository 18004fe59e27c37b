package cache

import (
	"context"
	"fmt"
	"time"
)

// Coordinator stores fetched results keyed by request identity and supports
// explicit invalidation. Values are JSON-encoded; Get reports whether the key
// was present and unmarshals into dest when it was.
type Coordinator interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Cache keys. Rooms, profile, my-bookings, and each (room, date) availability
// query are independently keyed read caches.
const (
	KeyRooms      = "rooms"
	KeyProfile    = "profile"
	KeyMyBookings = "myBookings"
)

// KeyAvailability builds the cache key for one (roomID, date) availability
// query.
func KeyAvailability(roomID int, date string) string {
	return fmt.Sprintf("availability:%d:%s", roomID, date)
}
