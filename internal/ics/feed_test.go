package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//feed//EN
BEGIN:VEVENT
UID:evt-1
SUMMARY:Dentist
DTSTART:20240102T140000Z
DTEND:20240102T143000Z
END:VEVENT
BEGIN:VEVENT
UID:evt-2
SUMMARY:Outside the window
DTSTART:20240115T090000Z
DTEND:20240115T100000Z
END:VEVENT
BEGIN:VEVENT
UID:evt-3
DTSTART:20240103T090000Z
DTEND:20240103T100000Z
END:VEVENT
END:VCALENDAR
`

func TestFeedListEvents(t *testing.T) {
	t.Parallel()

	timeMin := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	timeMax := timeMin.AddDate(0, 0, 7)

	t.Run("returns in-window events with namespaced ids", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/calendar")
			_, _ = w.Write([]byte(sampleFeed))
		}))
		defer server.Close()

		feed := NewFeed("personal", server.URL, nil)
		events, err := feed.ListEvents(context.Background(), timeMin, timeMax)
		if err != nil {
			t.Fatalf("ListEvents returned error: %v", err)
		}

		// evt-2 starts outside the window and evt-3 has no summary.
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		event := events[0]
		if event.ExternalID != "personal:evt-1" {
			t.Errorf("expected namespaced external id, got %q", event.ExternalID)
		}
		if event.Name != "Dentist" {
			t.Errorf("unexpected name %q", event.Name)
		}
		want := time.Date(2024, time.January, 2, 14, 0, 0, 0, time.UTC)
		if !event.Start.Equal(want) {
			t.Errorf("expected start %v, got %v", want, event.Start)
		}
		if got := event.End.Sub(event.Start); got != 30*time.Minute {
			t.Errorf("expected 30m duration, got %v", got)
		}
	})

	t.Run("surfaces non-200 statuses", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		feed := NewFeed("personal", server.URL, nil)
		if _, err := feed.ListEvents(context.Background(), timeMin, timeMax); err == nil {
			t.Fatal("expected a 404 response to fail")
		}
	})

	t.Run("surfaces malformed feeds", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>not a calendar</html>"))
		}))
		defer server.Close()

		feed := NewFeed("personal", server.URL, nil)
		if _, err := feed.ListEvents(context.Background(), timeMin, timeMax); err == nil {
			t.Fatal("expected a malformed feed to fail")
		}
	})
}
