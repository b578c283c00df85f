// Package api is the REST boundary to the booking backend. Response
// shapes are decoded into explicit structs here; nothing downstream
// touches raw JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dom/tablebook/internal/domain"
	"github.com/dom/tablebook/internal/event"
)

// ErrUnauthorized reports a 401 from any endpoint. By the time the
// caller sees it, the logout signal has already been emitted; callers
// should not surface it as a form error.
var ErrUnauthorized = errors.New("unauthorized")

// CredentialSource supplies the bearer token attached to outgoing
// requests. The session store satisfies it.
type CredentialSource interface {
	Credential() (string, bool)
}

// Client performs authenticated HTTP calls against the backend.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	creds        CredentialSource
	unauthorized *event.Signal
	logger       zerolog.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the underlying transport, used by tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(baseURL string, creds CredentialSource, unauthorized *event.Signal, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		creds:        creds,
		unauthorized: unauthorized,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type AuthRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// NewBooking is the create-booking payload. Date and Time carry the
// masked text the validator approved.
type NewBooking struct {
	Time         string `json:"time"`
	Date         string `json:"date"`
	Guests       int    `json:"guests"`
	UserID       int64  `json:"userId"`
	RestaurantID int64  `json:"restaurantId"`
}

type createBookingRequest struct {
	Data NewBooking `json:"data"`
}

type RestaurantPage struct {
	Data       []domain.Restaurant `json:"data"`
	TotalPages int                 `json:"totalPages"`
}

// Authenticate exchanges a phone and name for a credential. The token
// is opaque to the client; only the server interprets it.
func (c *Client) Authenticate(ctx context.Context, phone, name string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/users/auth", AuthRequest{Phone: phone, Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBooking submits a reservation and returns the server-assigned
// booking.
func (c *Client) CreateBooking(ctx context.Context, data NewBooking) (*domain.Booking, error) {
	var created domain.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", createBookingRequest{Data: data}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListBookings fetches every booking for the given user, with the
// restaurant snapshot embedded by the server.
func (c *Client) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	path := "/bookings?userId=" + strconv.FormatInt(userID, 10)
	var bookings []domain.Booking
	if err := c.do(ctx, http.MethodGet, path, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// DeleteBooking cancels a booking by id.
func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/bookings/"+strconv.FormatInt(id, 10), nil, nil)
}

// ListRestaurants fetches one page of the catalog.
func (c *Client) ListRestaurants(ctx context.Context, page int) (*RestaurantPage, error) {
	path := "/restaurants?page=" + url.QueryEscape(strconv.Itoa(page))
	var result RestaurantPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token, ok := c.creds.Credential(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Raise the process-wide logout notification regardless of
		// which operation was in flight; the session store owns the
		// consequences.
		c.logger.Debug().Str("path", path).Msg("unauthorized response")
		c.unauthorized.Emit()
		return ErrUnauthorized
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, snippet)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
