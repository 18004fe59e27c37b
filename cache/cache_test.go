package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"roombook/api"
	"roombook/models"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get round-trips", func(t *testing.T) {
		c := NewMemoryCache()
		rooms := []models.Room{{ID: 1, Name: "Blue Room"}}
		if err := c.Set(ctx, KeyRooms, rooms, 0); err != nil {
			t.Fatalf("Set returned error: %v", err)
		}
		var got []models.Room
		hit, err := c.Get(ctx, KeyRooms, &got)
		if err != nil || !hit {
			t.Fatalf("Get = %v, %v, want hit", hit, err)
		}
		if len(got) != 1 || got[0].Name != "Blue Room" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		c := NewMemoryCache()
		var got []models.Room
		hit, err := c.Get(ctx, KeyRooms, &got)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if hit {
			t.Error("hit = true, want miss")
		}
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		c := NewMemoryCache()
		if err := c.Set(ctx, KeyProfile, models.Profile{}, time.Millisecond); err != nil {
			t.Fatalf("Set returned error: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
		var got models.Profile
		hit, _ := c.Get(ctx, KeyProfile, &got)
		if hit {
			t.Error("hit = true, want expiry miss")
		}
	})

	t.Run("invalidate removes only the named keys", func(t *testing.T) {
		c := NewMemoryCache()
		c.Set(ctx, KeyProfile, models.Profile{}, 0)
		c.Set(ctx, KeyMyBookings, []models.Booking{}, 0)
		c.Set(ctx, KeyRooms, []models.Room{}, 0)
		if err := c.Invalidate(ctx, KeyProfile, KeyMyBookings); err != nil {
			t.Fatalf("Invalidate returned error: %v", err)
		}
		var p models.Profile
		if hit, _ := c.Get(ctx, KeyProfile, &p); hit {
			t.Error("profile should be invalidated")
		}
		var r []models.Room
		if hit, _ := c.Get(ctx, KeyRooms, &r); !hit {
			t.Error("rooms should survive")
		}
	})
}

func TestKeyAvailability(t *testing.T) {
	if got := KeyAvailability(7, "2030-06-01"); got != "availability:7:2030-06-01" {
		t.Errorf("KeyAvailability = %q", got)
	}
}

// countingClient counts upstream fetches per method.
type countingClient struct {
	api.Client
	mu    sync.Mutex
	calls map[string]int
}

func newCountingClient() *countingClient {
	return &countingClient{calls: make(map[string]int)}
}

func (c *countingClient) bump(name string) {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
}

func (c *countingClient) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *countingClient) ListRooms(_ context.Context) ([]models.Room, error) {
	c.bump("rooms")
	return []models.Room{{ID: 1, Name: "Blue Room"}}, nil
}

func (c *countingClient) GetProfile(_ context.Context) (*models.Profile, error) {
	c.bump("profile")
	return &models.Profile{Statistics: models.ProfileStatistics{TotalBookings: 2}}, nil
}

func (c *countingClient) MyBookings(_ context.Context) ([]models.Booking, error) {
	c.bump("myBookings")
	return []models.Booking{{ID: "b-1"}}, nil
}

func (c *countingClient) GetAvailability(_ context.Context, roomID int, date string) (*models.Availability, error) {
	c.bump(KeyAvailability(roomID, date))
	return &models.Availability{AvailableSlots: []models.AvailabilitySlot{}}, nil
}

func TestCachedClient(t *testing.T) {
	ctx := context.Background()

	t.Run("reads are coalesced until invalidated", func(t *testing.T) {
		upstream := newCountingClient()
		cached := NewCachedClient(upstream, NewMemoryCache(), time.Minute)

		for i := 0; i < 3; i++ {
			if _, err := cached.MyBookings(ctx); err != nil {
				t.Fatalf("MyBookings returned error: %v", err)
			}
		}
		if upstream.count("myBookings") != 1 {
			t.Errorf("upstream fetches = %d, want 1", upstream.count("myBookings"))
		}

		if err := cached.Cache.Invalidate(ctx, KeyMyBookings); err != nil {
			t.Fatalf("Invalidate returned error: %v", err)
		}
		if _, err := cached.MyBookings(ctx); err != nil {
			t.Fatalf("MyBookings returned error: %v", err)
		}
		if upstream.count("myBookings") != 2 {
			t.Errorf("upstream fetches after invalidation = %d, want 2", upstream.count("myBookings"))
		}
	})

	t.Run("availability is keyed per room and date", func(t *testing.T) {
		upstream := newCountingClient()
		cached := NewCachedClient(upstream, NewMemoryCache(), time.Minute)

		cached.GetAvailability(ctx, 1, "2030-06-01")
		cached.GetAvailability(ctx, 1, "2030-06-01")
		cached.GetAvailability(ctx, 1, "2030-06-02")
		cached.GetAvailability(ctx, 2, "2030-06-01")

		if got := upstream.count(KeyAvailability(1, "2030-06-01")); got != 1 {
			t.Errorf("fetches for (1, 06-01) = %d, want 1", got)
		}
		if got := upstream.count(KeyAvailability(1, "2030-06-02")); got != 1 {
			t.Errorf("fetches for (1, 06-02) = %d, want 1", got)
		}
		if got := upstream.count(KeyAvailability(2, "2030-06-01")); got != 1 {
			t.Errorf("fetches for (2, 06-01) = %d, want 1", got)
		}
	})

	t.Run("rooms and profile are independent keys", func(t *testing.T) {
		upstream := newCountingClient()
		cached := NewCachedClient(upstream, NewMemoryCache(), time.Minute)
		cached.ListRooms(ctx)
		cached.GetProfile(ctx)
		cached.Cache.Invalidate(ctx, KeyProfile)
		cached.ListRooms(ctx)
		cached.GetProfile(ctx)
		if upstream.count("rooms") != 1 {
			t.Errorf("rooms fetches = %d, want 1", upstream.count("rooms"))
		}
		if upstream.count("profile") != 2 {
			t.Errorf("profile fetches = %d, want 2", upstream.count("profile"))
		}
	})
}
