package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"roombook/models"
	"roombook/utils"

	"go.uber.org/zap"
)

// TokenSource supplies the current bearer token, or "" when the session is
// unauthenticated. The session manager's Token method satisfies this, which
// mirrors a request interceptor reading the live credential on every call.
type TokenSource func() string

// Client is the remote booking API boundary. All calls are stateless; auth
// state lives in the session manager.
type Client interface {
	Authenticate(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
	VerifyToken(ctx context.Context, token string) (bool, error)
	GetProfile(ctx context.Context) (*models.Profile, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetAvailability(ctx context.Context, roomID int, date string) (*models.Availability, error)
	CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	MyBookings(ctx context.Context) ([]models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) error
}

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	BaseURL string
	Tokens  TokenSource
	HTTP    *http.Client
}

// NewHTTPClient builds a client against baseURL. tokens may be nil for a
// client that only performs unauthenticated calls.
func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Tokens:  tokens,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// errorBody matches the server's error response shape.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// do performs one request. A non-empty overrideToken replaces the TokenSource
// token for this call (used by VerifyToken, which runs before the session is
// authenticated). out may be nil when the response body is irrelevant.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, out any, overrideToken string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return utils.NetworkError(fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return utils.NetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	token := overrideToken
	if token == "" && c.Tokens != nil {
		token = c.Tokens()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		utils.GetLogger().Warn("Request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return utils.NetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return utils.ClassifyStatus(resp.StatusCode, eb.Error)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return utils.NetworkError(fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}
