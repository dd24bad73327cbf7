// Package client provides a typed HTTP client for the visitor notification
// feed and the polling loop kiosk and dashboard frontends run on top of it.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Identity describes the polling caller. Staff identities receive only
// events for visitors they host; any other role sees the full feed.
type Identity struct {
	Role string
	Name string
}

// Notification is one feed event. IsRead is client-local state, never sent
// by the server.
type Notification struct {
	ID          int64     `json:"id"`
	VisitorID   string    `json:"visitor_id"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
	VisitorName *string   `json:"visitorName,omitempty"`
	HostName    *string   `json:"hostName,omitempty"`

	IsRead bool `json:"isRead"`
}

// FeedPage is the poll response. LatestID is the highest returned event id,
// or the request cursor when nothing is new.
type FeedPage struct {
	Notifications []Notification `json:"notifications"`
	HasNew        bool           `json:"has_new"`
	LatestID      int64          `json:"latest_id"`
}

// Client calls the notification feed endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a feed client for the given server base URL. Each poll request
// is bounded by timeout; zero means 10 seconds.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns all events after cursor visible to the identity, in
// ascending id order.
func (c *Client) Fetch(ctx context.Context, cursor int64, identity Identity) (*FeedPage, error) {
	u, err := url.Parse(c.baseURL + "/api/v1/notifications")
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}

	q := u.Query()
	q.Set("last_id", strconv.FormatInt(cursor, 10))
	if identity.Role != "" {
		q.Set("role", identity.Role)
	}
	if identity.Name != "" {
		q.Set("user_name", identity.Name)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var page FeedPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}
	return &page, nil
}
