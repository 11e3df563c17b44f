package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"tripcal/internal/calendar"
	"tripcal/internal/core"
)

func testDays() []core.DayEntry {
	trips := []core.Trip{{
		Name: "Japan",
		Segments: []core.Segment{
			{ID: "f1", Type: "flight", Date: "2026-01-30", DateEnd: "2026-02-01", Route: "YVR-NRT", Flight: "3", Airline: "AC"},
			{ID: "s1", Type: "stay", Date: "2026-02-01", DateEnd: "2026-02-03", Title: "Lodge", Location: "Niseko"},
			{ID: "a1", Type: "activity", Date: "2026-02-02", Title: "Ski lesson", TimeStart: "09:00"},
		},
	}}
	return calendar.ProjectTrips(trips, calendar.Options{})
}

func TestWriteRoundTrip(t *testing.T) {
	days := testDays()
	var buf bytes.Buffer
	stamp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := Write(&buf, days, Options{Name: "Japan", Stamp: stamp}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	cal, err := ical.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ParseCalendar() error = %v", err)
	}
	events := cal.Events()
	if len(events) != len(days) {
		t.Fatalf("got %d events, want %d", len(events), len(days))
	}

	byUID := map[string]*ical.VEvent{}
	for _, ev := range events {
		byUID[ev.GetProperty(ical.ComponentPropertyUniqueId).Value] = ev
	}

	mid := byUID["2026-01-31@tripcal"]
	if mid == nil {
		t.Fatal("missing in-flight day event")
	}
	if got := mid.GetProperty(ical.ComponentPropertySummary).Value; got != "Japan (in flight)" {
		t.Errorf("summary = %q", got)
	}
	if got := mid.GetProperty(ical.ComponentPropertyDtStart).Value; got != "20260131" {
		t.Errorf("dtstart = %q", got)
	}

	stay := byUID["2026-02-02@tripcal"]
	if stay == nil {
		t.Fatal("missing stay day event")
	}
	if got := stay.GetProperty(ical.ComponentPropertySummary).Value; got != "Japan @ Lodge" {
		t.Errorf("summary = %q", got)
	}
	if got := stay.GetProperty(ical.ComponentPropertyLocation).Value; got != "Niseko" {
		t.Errorf("location = %q", got)
	}
}

func TestWriteIsReproducible(t *testing.T) {
	days := testDays()
	opts := Options{Stamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var a, b bytes.Buffer
	if err := Write(&a, days, opts); err != nil {
		t.Fatal(err)
	}
	if err := Write(&b, days, opts); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("same days produced different feeds")
	}
}

func TestEventDescription(t *testing.T) {
	days := testDays()
	var dep core.DayEntry
	for _, d := range days {
		if d.DateKey == "2026-01-30" {
			dep = d
		}
	}
	desc := eventDescription(dep)
	if !strings.Contains(desc, "Travel: YVR-NRT (departure)") {
		t.Errorf("description = %q", desc)
	}
}
