// Package booking drives the room → date → slot → submit selection sequence,
// keeps dependent availability data fresh, and coordinates cache invalidation
// after a successful reservation.
package booking

import (
	"context"
	"sync"
	"time"

	"roombook/cache"
	"roombook/models"
	"roombook/services/session"
	"roombook/utils"

	"go.uber.org/zap"
)

// State is the selection workflow state.
type State int

const (
	StateNoRoom State = iota
	StateRoomSelected
	StateSlotSelected
	StateSubmitting
	StateConfirmed
)

func (s State) String() string {
	switch s {
	case StateRoomSelected:
		return "roomSelected"
	case StateSlotSelected:
		return "slotSelected"
	case StateSubmitting:
		return "submitting"
	case StateConfirmed:
		return "confirmed"
	default:
		return "noRoom"
	}
}

const dateLayout = "2006-01-02"

// Selection is the in-progress room/date/slot choice. RoomID 0 means no room
// selected; the date always holds a value and defaults to today.
type Selection struct {
	RoomID int
	Date   string
	Slot   *models.AvailabilitySlot
}

// WorkflowController sequences the booking selection. All mutating operations
// take the controller lock; availability fetches run in their own goroutine
// and their results are applied only if the (room, date) key they were issued
// under still matches the live selection.
type WorkflowController struct {
	mu       sync.Mutex
	api      BookingAPI
	cache    cache.Coordinator
	sessions session.Manager

	state       State
	sel         Selection
	slots       []models.AvailabilitySlot
	slotsLoaded bool
	loading     bool
	lastErr     error

	subscribers []func()
}

// BookingAPI is the slice of the remote client the workflow needs. The cached
// client satisfies it, giving coalesced reads for rooms, bookings, and
// availability.
type BookingAPI interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetAvailability(ctx context.Context, roomID int, date string) (*models.Availability, error)
	CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	MyBookings(ctx context.Context) ([]models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) error
}

// NewWorkflowController builds a controller for one booking flow. The date
// starts at today's local calendar date.
func NewWorkflowController(api BookingAPI, c cache.Coordinator, sessions session.Manager) *WorkflowController {
	return &WorkflowController{
		api:      api,
		cache:    c,
		sessions: sessions,
		state:    StateNoRoom,
		sel:      Selection{Date: time.Now().Format(dateLayout)},
	}
}

// SelectRoom sets the room, clears any chosen slot, and refetches
// availability for the new (room, date) pair. Valid from any state.
// Re-selecting the current room only clears the slot; the loaded
// availability still belongs to the live pair.
func (c *WorkflowController) SelectRoom(ctx context.Context, roomID int) {
	c.mu.Lock()
	changed := c.sel.RoomID != roomID
	c.sel.RoomID = roomID
	c.sel.Slot = nil
	c.state = StateRoomSelected
	if changed {
		c.startFetchLocked(ctx)
	}
	c.mu.Unlock()
	c.notify()
}

// SelectDate changes the date, clearing any chosen slot and refetching
// availability for the current room. Dates strictly before today are rejected
// before any fetch is issued.
func (c *WorkflowController) SelectDate(ctx context.Context, date string) error {
	day, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return utils.ValidationError(0, "Invalid date")
	}
	today, _ := time.ParseInLocation(dateLayout, time.Now().Format(dateLayout), time.Local)
	if day.Before(today) {
		return utils.ValidationError(0, "Cannot select a past date")
	}

	c.mu.Lock()
	c.sel.Date = date
	c.sel.Slot = nil
	if c.state == StateSlotSelected {
		c.state = StateRoomSelected
	}
	if c.sel.RoomID != 0 {
		c.startFetchLocked(ctx)
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// SelectSlot picks one of the loaded availability slots. It is only valid
// once availability for the live (room, date) pair has loaded, and the slot
// must be one of the loaded ones. No fetch is triggered.
func (c *WorkflowController) SelectSlot(slot models.AvailabilitySlot) error {
	c.mu.Lock()
	defer func() { c.mu.Unlock(); c.notify() }()

	if c.sel.RoomID == 0 || !c.slotsLoaded {
		return utils.ValidationError(0, "Select a room and wait for availability first")
	}
	for _, s := range c.slots {
		if s == slot {
			c.sel.Slot = &slot
			c.state = StateSlotSelected
			return nil
		}
	}
	return utils.ValidationError(0, "Slot is not available")
}

// Submit sends the reservation. It requires both a room and a slot; nothing
// is sent otherwise. On success the myBookings and profile caches are
// invalidated, the selection resets, and the created booking is returned for
// navigation. On failure the selection (slot included) is left as it was so
// the user can retry, and the server's message is surfaced.
func (c *WorkflowController) Submit(ctx context.Context) (*models.Booking, error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, utils.ValidationError(0, "Submission already in progress")
	}
	if c.sel.RoomID == 0 || c.sel.Slot == nil {
		c.mu.Unlock()
		return nil, utils.ValidationError(0, "Select a room and a time slot first")
	}
	input := models.BookingInput{
		RoomID:    c.sel.RoomID,
		StartTime: c.sel.Slot.StartTime,
		EndTime:   c.sel.Slot.EndTime,
	}
	c.state = StateSubmitting
	c.mu.Unlock()
	c.notify()

	booking, err := c.api.CreateBooking(ctx, input)
	if err != nil {
		c.mu.Lock()
		c.state = StateRoomSelected
		c.lastErr = err
		c.mu.Unlock()
		c.handleAuthFailure(err)
		c.notify()
		return nil, err
	}

	if err := c.cache.Invalidate(ctx, cache.KeyMyBookings, cache.KeyProfile); err != nil {
		utils.GetLogger().Warn("Failed to invalidate caches after booking", zap.Error(err))
	}

	c.mu.Lock()
	c.state = StateConfirmed
	c.sel = Selection{Date: time.Now().Format(dateLayout)}
	c.slots = nil
	c.slotsLoaded = false
	c.lastErr = nil
	c.mu.Unlock()
	c.notify()

	utils.GetLogger().Info("Booking created",
		zap.String("bookingID", booking.ID), zap.Int("roomID", input.RoomID))
	return booking, nil
}

// startFetchLocked issues an availability fetch for the live selection. The
// caller holds the lock. The fetch is tagged with its (room, date) key; a
// result whose key no longer matches the live pair at resolution time is
// discarded.
func (c *WorkflowController) startFetchLocked(ctx context.Context) {
	roomID, date := c.sel.RoomID, c.sel.Date
	c.slots = nil
	c.slotsLoaded = false
	c.loading = true
	go c.fetchAvailability(ctx, roomID, date)
}

func (c *WorkflowController) fetchAvailability(ctx context.Context, roomID int, date string) {
	avail, err := c.api.GetAvailability(ctx, roomID, date)

	c.mu.Lock()
	if c.sel.RoomID != roomID || c.sel.Date != date {
		// Superseded while in flight; drop the result.
		c.mu.Unlock()
		c.notify()
		return
	}
	c.loading = false
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		utils.GetLogger().Warn("Availability fetch failed",
			zap.Int("roomID", roomID), zap.String("date", date), zap.Error(err))
		c.handleAuthFailure(err)
		c.notify()
		return
	}
	c.slots = avail.AvailableSlots
	c.slotsLoaded = true
	c.lastErr = nil
	c.mu.Unlock()
	c.notify()
}

// handleAuthFailure collapses the session on a rejected token; every other
// failure is left for the caller to act on.
func (c *WorkflowController) handleAuthFailure(err error) {
	if utils.IsAuthorization(err) {
		c.sessions.Logout()
	}
}

// State returns the current workflow state.
func (c *WorkflowController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns a snapshot of the current selection.
func (c *WorkflowController) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel := c.sel
	if c.sel.Slot != nil {
		slot := *c.sel.Slot
		sel.Slot = &slot
	}
	return sel
}

// AvailableSlots returns the loaded slots for the live (room, date) pair and
// whether a fetch is still in flight.
func (c *WorkflowController) AvailableSlots() ([]models.AvailabilitySlot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots := make([]models.AvailabilitySlot, len(c.slots))
	copy(slots, c.slots)
	return slots, c.loading
}

// LastError returns the most recent surfaced failure, if any. It is cleared
// by the next successful fetch or submission.
func (c *WorkflowController) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Subscribe registers fn to run after every workflow state change, including
// the settlement of an availability fetch. Callbacks run outside the lock.
func (c *WorkflowController) Subscribe(fn func()) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

func (c *WorkflowController) notify() {
	c.mu.Lock()
	subs := make([]func(), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
