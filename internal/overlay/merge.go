package overlay

import "tripcal/internal/core"

// Activities returns the day's projected activities minus those the overlay
// deletes, followed by the user-added activities for the date. The day entry
// is never modified.
func Activities(day core.DayEntry, ov core.Overlay) []core.ActivityItem {
	added := ov.Added[day.DateKey]
	out := make([]core.ActivityItem, 0, len(day.Activities)+len(added))
	for _, a := range day.Activities {
		if ov.IsDeleted(day.DateKey, a.ID) {
			continue
		}
		out = append(out, a)
	}
	for _, a := range added {
		a.IsUserAdded = true
		out = append(out, a)
	}
	return out
}

// Apply returns a copy of day whose activity list has the overlay merged in.
func Apply(day core.DayEntry, ov core.Overlay) core.DayEntry {
	day.Activities = Activities(day, ov)
	return day
}

// ApplyAll merges the overlay into every day. Dates that only carry
// user-added activities do not gain an entry.
func ApplyAll(days []core.DayEntry, ov core.Overlay) []core.DayEntry {
	out := make([]core.DayEntry, len(days))
	for i, d := range days {
		out[i] = Apply(d, ov)
	}
	return out
}
