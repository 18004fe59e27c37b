package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"roombook/models"
	"roombook/utils"
)

func (c *HTTPClient) Authenticate(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/telegram", nil, req, &resp, ""); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) VerifyToken(ctx context.Context, token string) (bool, error) {
	var resp models.VerifyResponse
	if err := c.do(ctx, http.MethodGet, "/auth/verify", nil, nil, &resp, token); err != nil {
		// A rejected token reads as "not valid" rather than an error; the
		// caller purges it either way.
		if utils.IsAuthorization(err) {
			return false, nil
		}
		return false, err
	}
	return resp.Valid, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	var resp models.Profile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, nil, &resp, ""); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := c.do(ctx, http.MethodGet, "/booking/rooms", nil, nil, &rooms, ""); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *HTTPClient) GetAvailability(ctx context.Context, roomID int, date string) (*models.Availability, error) {
	query := url.Values{"date": {date}}
	path := fmt.Sprintf("/booking/rooms/%d/availability", roomID)
	var resp models.Availability
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp, ""); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	var resp models.Booking
	if err := c.do(ctx, http.MethodPost, "/booking", nil, input, &resp, ""); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) MyBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.do(ctx, http.MethodGet, "/booking/my", nil, nil, &bookings, ""); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *HTTPClient) CancelBooking(ctx context.Context, bookingID string) error {
	return c.do(ctx, http.MethodDelete, "/booking/"+bookingID, nil, nil, nil, "")
}
