package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client talks to a calendar service over HTTP with JSON payloads.
// Timestamps on the wire are ISO-8601 instants.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the service at baseURL. The token, when
// non-empty, is sent as a bearer credential.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

type eventPayload struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type listResponse struct {
	Items []eventPayload `json:"items"`
}

// CreateEvent creates the event remotely and returns the assigned id with the
// confirmed interval.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (CreatedEvent, error) {
	body, err := json.Marshal(eventPayload{
		Name:      input.Name,
		StartTime: input.Start,
		EndTime:   input.End,
	})
	if err != nil {
		return CreatedEvent{}, fmt.Errorf("calendar: encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return CreatedEvent{}, fmt.Errorf("calendar: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CreatedEvent{}, fmt.Errorf("calendar: create event: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CreatedEvent{}, fmt.Errorf("calendar: create event: unexpected status %d", resp.StatusCode)
	}

	var created eventPayload
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return CreatedEvent{}, fmt.Errorf("calendar: decode create response: %w", err)
	}
	if created.ID == "" {
		return CreatedEvent{}, fmt.Errorf("calendar: create response missing event id")
	}

	return CreatedEvent{
		ExternalID:     created.ID,
		ConfirmedStart: created.StartTime,
		ConfirmedEnd:   created.EndTime,
	}, nil
}

// ListEvents fetches events within [timeMin, timeMax). Items missing an id,
// name, or either bound are skipped; the service may legitimately return
// fewer events than exist.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]RemoteEvent, error) {
	query := url.Values{}
	query.Set("timeMin", timeMin.UTC().Format(time.RFC3339))
	query.Set("timeMax", timeMax.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("calendar: build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar: list events: unexpected status %d", resp.StatusCode)
	}

	var listed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		return nil, fmt.Errorf("calendar: decode list response: %w", err)
	}

	events := make([]RemoteEvent, 0, len(listed.Items))
	for _, item := range listed.Items {
		if item.ID == "" || item.Name == "" || item.StartTime.IsZero() || item.EndTime.IsZero() {
			continue
		}
		events = append(events, RemoteEvent{
			ExternalID: item.ID,
			Name:       item.Name,
			Start:      item.StartTime,
			End:        item.EndTime,
		})
	}
	return events, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
