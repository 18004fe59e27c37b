// Package stubserver implements the booking API contract with in-memory data
// so the client can be developed and exercised without the production
// backend.
package stubserver

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"roombook/models"

	"github.com/google/uuid"
)

// Bookable hours for generated availability, local time.
const (
	dayStartHour = 9
	dayEndHour   = 18
	dateLayout   = "2006-01-02"
)

type storedBooking struct {
	models.Booking
	UserID int
	RoomID int
	Start  time.Time
	End    time.Time
}

type storedUser struct {
	models.UserProfile
	InitData string
}

// Store holds all stub state behind one mutex.
type Store struct {
	mu       sync.Mutex
	rooms    []models.Room
	users    map[string]*storedUser // keyed by initData
	nextUser int
	bookings map[string]*storedBooking
}

func NewStore() *Store {
	return &Store{
		rooms: []models.Room{
			{ID: 1, Name: "Blue Room", Description: "Up to 4 people, whiteboard"},
			{ID: 2, Name: "Green Room", Description: "Up to 8 people, projector"},
			{ID: 3, Name: "Focus Booth"},
		},
		users:    make(map[string]*storedUser),
		nextUser: 1,
		bookings: make(map[string]*storedBooking),
	}
}

// UpsertUser returns the user for an initData payload, creating one on first
// login. The stub trusts the payload as an opaque identity.
func (s *Store) UpsertUser(initData, phone string) models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[initData]; ok {
		if phone != "" {
			u.Phone = phone
		}
		return u.UserProfile
	}
	u := &storedUser{
		UserProfile: models.UserProfile{
			ID:         s.nextUser,
			TelegramID: fmt.Sprintf("tg-%d", s.nextUser),
			FirstName:  fmt.Sprintf("Dev User %d", s.nextUser),
			Phone:      phone,
		},
		InitData: initData,
	}
	s.nextUser++
	s.users[initData] = u
	return u.UserProfile
}

// UserByID looks up a user by numeric ID.
func (s *Store) UserByID(id int) (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u.UserProfile, true
		}
	}
	return models.UserProfile{}, false
}

func (s *Store) Rooms() []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]models.Room, len(s.rooms))
	copy(rooms, s.rooms)
	return rooms
}

func (s *Store) RoomByID(id int) (models.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.ID == id {
			return r, true
		}
	}
	return models.Room{}, false
}

// Availability generates hourly slots for the room on the given date, minus
// intervals already taken by confirmed bookings.
func (s *Store) Availability(roomID int, date string) ([]models.AvailabilitySlot, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var slots []models.AvailabilitySlot
	for hour := dayStartHour; hour < dayEndHour; hour++ {
		start := day.Add(time.Duration(hour) * time.Hour)
		end := start.Add(time.Hour)
		if s.overlapsLocked(roomID, start, end) {
			continue
		}
		slots = append(slots, models.AvailabilitySlot{
			StartTime: start.Format(time.RFC3339),
			EndTime:   end.Format(time.RFC3339),
		})
	}
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	return slots, nil
}

// CreateBooking records a booking unless the interval conflicts with an
// existing one for the same room.
func (s *Store) CreateBooking(userID int, input models.BookingInput) (*models.Booking, error) {
	start, err := time.Parse(time.RFC3339, input.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid startTime: %w", err)
	}
	end, err := time.Parse(time.RFC3339, input.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid endTime: %w", err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("endTime must be after startTime")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var room models.Room
	found := false
	for _, r := range s.rooms {
		if r.ID == input.RoomID {
			room, found = r, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("room %d not found", input.RoomID)
	}
	if s.overlapsLocked(input.RoomID, start, end) {
		return nil, errSlotTaken
	}

	b := &storedBooking{
		Booking: models.Booking{
			ID:        uuid.New().String(),
			Room:      room.Name,
			StartTime: input.StartTime,
			EndTime:   input.EndTime,
			Status:    models.BookingStatusConfirmed,
		},
		UserID: userID,
		RoomID: input.RoomID,
		Start:  start,
		End:    end,
	}
	s.bookings[b.ID] = b
	booking := b.Booking
	return &booking, nil
}

// errSlotTaken is the conflict sentinel; handlers map it to 409.
var errSlotTaken = errors.New("Slot is already booked")

// BookingsForUser returns the user's bookings, newest start first.
func (s *Store) BookingsForUser(userID int) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b.Booking)
		}
	}
	if out == nil {
		out = []models.Booking{}
	}
	return out
}

// Statistics counts the user's bookings for the profile response.
func (s *Store) Statistics(userID int) models.ProfileStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := models.ProfileStatistics{}
	now := time.Now()
	for _, b := range s.bookings {
		if b.UserID != userID || b.Status != models.BookingStatusConfirmed {
			continue
		}
		stats.TotalBookings++
		if b.Start.After(now) {
			stats.UpcomingBookings++
		}
	}
	return stats
}

// CancelBooking marks the booking cancelled. Only the owner may cancel.
func (s *Store) CancelBooking(userID int, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.UserID != userID {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	b.Status = models.BookingStatusCancelled
	return nil
}

// overlapsLocked reports whether [start, end) intersects a confirmed booking
// for the room. Caller holds the lock.
func (s *Store) overlapsLocked(roomID int, start, end time.Time) bool {
	for _, b := range s.bookings {
		if b.RoomID != roomID || b.Status != models.BookingStatusConfirmed {
			continue
		}
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
