package booking

import (
	"context"

	"roombook/cache"
	"roombook/models"
	"roombook/utils"

	"go.uber.org/zap"
)

// Rooms returns the bookable room list. Reads are coalesced by the cached
// client under the rooms key.
func (c *WorkflowController) Rooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := c.api.ListRooms(ctx)
	if err != nil {
		c.handleAuthFailure(err)
		return nil, err
	}
	return rooms, nil
}

// MyBookings returns the current user's booking records for display.
func (c *WorkflowController) MyBookings(ctx context.Context) ([]models.Booking, error) {
	bookings, err := c.api.MyBookings(ctx)
	if err != nil {
		c.handleAuthFailure(err)
		return nil, err
	}
	return bookings, nil
}

// CancelBooking cancels one booking and invalidates the result sets that
// reflect it, same as a successful submission does.
func (c *WorkflowController) CancelBooking(ctx context.Context, bookingID string) error {
	if err := c.api.CancelBooking(ctx, bookingID); err != nil {
		c.handleAuthFailure(err)
		return err
	}
	if err := c.cache.Invalidate(ctx, cache.KeyMyBookings, cache.KeyProfile); err != nil {
		utils.GetLogger().Warn("Failed to invalidate caches after cancellation", zap.Error(err))
	}
	return nil
}
