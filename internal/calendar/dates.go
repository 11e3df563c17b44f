package calendar

import (
	"strings"
	"time"
)

const (
	// DateLayout is the ISO calendar-day layout used for every date key.
	DateLayout = "2006-01-02"

	// MaxSpanDays caps date-range expansion so malformed spans cannot
	// cause unbounded work.
	MaxSpanDays = 365
)

// ParseDay parses a naive calendar day. The result is pinned to noon UTC so
// day arithmetic never crosses a date boundary.
func ParseDay(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC), true
}

// ExpandRange returns every date from start to end inclusive. A blank end
// means a single-day span. Unparseable or reversed input, or a span that does
// not reach end within MaxSpanDays iterations, yields no dates.
func ExpandRange(start, end string) []string {
	from, ok := ParseDay(start)
	if !ok {
		return nil
	}
	if strings.TrimSpace(end) == "" {
		return []string{from.Format(DateLayout)}
	}
	to, ok := ParseDay(end)
	if !ok {
		return nil
	}

	var out []string
	d := from
	for i := 0; !d.After(to); i++ {
		if i >= MaxSpanDays {
			return nil
		}
		out = append(out, d.Format(DateLayout))
		d = d.AddDate(0, 0, 1)
	}
	return out
}

// DisplayDate formats a date key for humans, e.g. "Fri, Jan 30, 2026".
// Unparseable keys are returned unchanged.
func DisplayDate(dateKey string) string {
	d, ok := ParseDay(dateKey)
	if !ok {
		return dateKey
	}
	return d.Format("Mon, Jan 2, 2006")
}
