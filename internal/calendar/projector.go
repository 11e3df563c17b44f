// Package calendar projects trip segments onto a day-indexed calendar.
//
// Projection is a pure function of its input: every call builds a private
// date-to-entry map, touches no shared state and reads no clock, so it is
// safe to call concurrently and to memoize on the document content.
//
// Field ownership on a day entry during the pass:
//
//	timezone, location, summary, shelter  write-once (first segment wins)
//	travel, meals, activities             append
//	metadata counters and flags           accumulate
//
// First-writer results depend on segment order, so trips and segments are
// always walked in source order.
package calendar

import (
	"fmt"
	"sort"
	"strings"

	"tripcal/internal/core"
)

// Options tunes a projection without affecting its determinism.
type Options struct {
	// Today, when set to a date key, marks the matching entry with IsToday.
	// The projector never reads the wall clock itself.
	Today string
}

// Project validates the document boundary and projects every trip.
func Project(doc *core.Document, opts Options) ([]core.DayEntry, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	return ProjectTrips(doc.Trips, opts), nil
}

// ProjectTrips walks every segment of every trip in order and returns one
// entry per distinct date, sorted by date key.
func ProjectTrips(trips []core.Trip, opts Options) []core.DayEntry {
	p := &pass{days: make(map[string]*dayState)}
	for _, trip := range trips {
		for _, seg := range trip.Segments {
			p.apply(trip, seg)
		}
	}
	return p.finalize(opts)
}

// EmptySpans returns the ids of segments whose span expands to no dates,
// i.e. segments that contribute nothing to the calendar.
func EmptySpans(trips []core.Trip) []string {
	var ids []string
	for _, trip := range trips {
		for _, seg := range trip.Segments {
			if len(ExpandRange(seg.Date, seg.DateEnd)) == 0 {
				ids = append(ids, seg.ID)
			}
		}
	}
	return ids
}

type pass struct {
	days map[string]*dayState
}

// dayState is a day entry under construction plus its private working sets.
type dayState struct {
	entry      core.DayEntry
	currencies map[string]struct{}
	currOrder  []string
	flags      map[string]struct{}
}

func (p *pass) day(key string) *dayState {
	if d, ok := p.days[key]; ok {
		return d
	}
	d := &dayState{
		entry: core.DayEntry{
			DateKey:     key,
			DateDisplay: DisplayDate(key),
			Travel:      []core.TravelItem{},
			Meals:       []core.MealItem{},
			Activities:  []core.ActivityItem{},
			Metadata: core.DayMetadata{
				LocationFlags: []string{},
			},
		},
		currencies: make(map[string]struct{}),
		flags:      make(map[string]struct{}),
	}
	p.days[key] = d
	return d
}

func (p *pass) apply(trip core.Trip, seg core.Segment) {
	dates := ExpandRange(seg.Date, seg.DateEnd)
	cat := seg.Category()
	n := len(dates)
	for i, key := range dates {
		d := p.day(key)
		d.claim(trip, seg)
		d.aggregate(seg, cat, i)
		d.dispatch(seg, cat, i, n)
	}
}

// claim fills the write-once fields that are still empty.
func (d *dayState) claim(trip core.Trip, seg core.Segment) {
	e := &d.entry
	if e.Timezone == "" {
		e.Timezone = firstNonEmpty(seg.Timezone, trip.Timezone)
	}
	if e.Location == "" {
		e.Location = strings.TrimSpace(seg.Location)
	}
	if e.Summary == "" {
		e.Summary = firstNonEmpty(trip.Name, trip.Region)
	}
}

// aggregate applies the metadata rules, which are independent of the
// category's own dispatch policy.
func (d *dayState) aggregate(seg core.Segment, cat core.Category, i int) {
	m := &d.entry.Metadata
	if cat.IsTravel() {
		m.HasTravel = true
	}
	if i == 0 && seg.Status == core.StatusToBook {
		m.UnbookedCount++
		m.HasUnbooked = true
	}
	if i == 0 && seg.HasCost() {
		m.EstimatedCost += seg.Cost()
		if cur := core.NormalizeCurrency(seg.Currency, ""); cur != "" {
			if _, ok := d.currencies[cur]; !ok {
				d.currencies[cur] = struct{}{}
				d.currOrder = append(d.currOrder, cur)
			}
		}
	}
	if flag := LocationFlag(seg.Location); flag != "" {
		if _, ok := d.flags[flag]; !ok {
			d.flags[flag] = struct{}{}
			m.LocationFlags = append(m.LocationFlags, flag)
		}
	}
}

func (p *pass) finalize(opts Options) []core.DayEntry {
	keys := make([]string, 0, len(p.days))
	for k := range p.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]core.DayEntry, 0, len(keys))
	for _, k := range keys {
		d := p.days[k]
		e := d.entry
		e.Metadata.CostCurrencies = append([]string{}, d.currOrder...)
		e.IsToday = opts.Today != "" && k == opts.Today
		out = append(out, e)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
