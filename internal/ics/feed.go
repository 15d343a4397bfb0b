// Package ics reads events from ICS subscription feeds. Feeds are read-only
// remote sources: they contribute events to reconciliation but never receive
// created events.
package ics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/weekly-planner/internal/calendar"
)

const fetchTimeout = 15 * time.Second

// Feed is a single ICS subscription.
type Feed struct {
	sourceID   string
	url        string
	httpClient *http.Client
}

// NewFeed builds a feed reader. sourceID namespaces the external ids derived
// from the feed's event UIDs so feeds never collide with the calendar service
// or with each other.
func NewFeed(sourceID, url string, httpClient *http.Client) *Feed {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return &Feed{sourceID: sourceID, url: url, httpClient: httpClient}
}

// ListEvents fetches the feed and returns events starting within
// [timeMin, timeMax). Events without a UID, summary, or usable interval are
// skipped; an empty feed is not an error.
func (f *Feed) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.RemoteEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("ics: build request for feed %s: %w", f.sourceID, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ics: fetch feed %s: %w", f.sourceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ics: fetch feed %s: unexpected status %d", f.sourceID, resp.StatusCode)
	}

	cal, err := ical.ParseCalendar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ics: parse feed %s: %w", f.sourceID, err)
	}

	var events []calendar.RemoteEvent
	for _, component := range cal.Events() {
		uidProp := component.GetProperty(ical.ComponentPropertyUniqueId)
		summaryProp := component.GetProperty(ical.ComponentPropertySummary)
		if uidProp == nil || uidProp.Value == "" || summaryProp == nil || summaryProp.Value == "" {
			continue
		}

		start, err := component.GetStartAt()
		if err != nil {
			continue
		}
		end, err := component.GetEndAt()
		if err != nil || !end.After(start) {
			continue
		}
		if start.Before(timeMin) || !start.Before(timeMax) {
			continue
		}

		events = append(events, calendar.RemoteEvent{
			ExternalID: f.sourceID + ":" + uidProp.Value,
			Name:       summaryProp.Value,
			Start:      start,
			End:        end,
		})
	}

	return events, nil
}
