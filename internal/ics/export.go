// Package ics exports a projected calendar as an iCalendar feed with one
// all-day event per day.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"tripcal/internal/calendar"
	"tripcal/internal/core"
)

const productID = "-//tripcal//day calendar//EN"

// Options controls feed metadata. Stamp is written as DTSTAMP on every event;
// callers pass a fixed time to get reproducible output.
type Options struct {
	Name  string
	Stamp time.Time
}

// Build converts days into a calendar. Days with unparseable keys are skipped.
func Build(days []core.DayEntry, opts Options) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, day := range days {
		start, ok := calendar.ParseDay(day.DateKey)
		if !ok {
			continue
		}
		ev := cal.AddEvent(day.DateKey + "@tripcal")
		ev.SetDtStampTime(opts.Stamp.UTC())
		ev.SetAllDayStartAt(start)
		ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
		ev.SetSummary(eventSummary(day))
		if desc := eventDescription(day); desc != "" {
			ev.SetDescription(desc)
		}
		if day.Location != "" {
			ev.SetLocation(day.Location)
		}
		if day.Metadata.HasTravel {
			ev.SetProperty(ical.ComponentPropertyCategories, "TRAVEL")
		}
	}
	return cal
}

// Write serializes the feed built from days to w.
func Write(w io.Writer, days []core.DayEntry, opts Options) error {
	if err := Build(days, opts).SerializeTo(w); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

func eventSummary(day core.DayEntry) string {
	summary := day.Summary
	if summary == "" {
		summary = day.DateDisplay
	}
	switch {
	case day.IsInFlight:
		summary += " (in flight)"
	case day.Shelter.Populated() && day.Shelter.Name != "":
		summary += " @ " + day.Shelter.Name
	}
	return summary
}

func eventDescription(day core.DayEntry) string {
	var lines []string
	for _, t := range day.Travel {
		label := firstNonEmpty(t.Title, t.Route, t.Details, t.Type)
		switch {
		case t.IsDeparture:
			label += " (departure)"
		case t.IsArrival:
			label += " (arrival)"
		}
		lines = append(lines, "Travel: "+label)
	}
	if day.InFlightDetails != nil {
		lines = append(lines, "In flight: "+firstNonEmpty(day.InFlightDetails.Flight, day.InFlightDetails.Route))
	}
	if sh := day.Shelter; sh.Populated() {
		lines = append(lines, fmt.Sprintf("Stay: %s (night %d of %d)", sh.Name, sh.DayOfStay, sh.TotalStayDays))
	}
	for _, m := range day.Meals {
		lines = append(lines, "Meal: "+m.Name)
	}
	for _, a := range day.Activities {
		line := "Activity: " + a.Name
		if a.Time != "" {
			line = "Activity: " + a.Time + " " + a.Name
		}
		lines = append(lines, line)
	}
	if n := day.Metadata.UnbookedCount; n > 0 {
		lines = append(lines, fmt.Sprintf("To book: %d", n))
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
