package calendar

import (
	"fmt"
	"strings"

	"tripcal/internal/core"
)

// DateLineNote is attached to the intermediate days of a multi-day flight.
const DateLineNote = "In flight: crossing the International Date Line"

// dispatch merges the segment into the day according to its category. Only
// travel and stays have multi-day semantics; every other category occupies
// the first date of its span alone.
func (d *dayState) dispatch(seg core.Segment, cat core.Category, i, n int) {
	e := &d.entry
	switch cat {
	case core.CategoryFlight, core.CategoryGround:
		d.dispatchTravel(seg, cat, i, n)

	case core.CategoryStay:
		if n > 1 && i == n-1 {
			// checkout day stays free for the next stay
			return
		}
		if e.Shelter.Populated() {
			return
		}
		e.Shelter = shelterInfo(seg, i, n)

	case core.CategoryMeal:
		if i == 0 {
			e.Meals = append(e.Meals, mealItem(seg))
		}

	case core.CategoryActivity:
		if i != 0 {
			return
		}
		if len(seg.Activities) > 0 {
			for idx, sub := range seg.Activities {
				e.Activities = append(e.Activities, subActivityItem(seg, sub, idx))
			}
			return
		}
		e.Activities = append(e.Activities, activityItem(seg, seg.Label()))

	case core.CategoryLayover:
		if i == 0 {
			label := firstNonEmpty(seg.Location, seg.Title, seg.Details)
			e.Activities = append(e.Activities, activityItem(seg, "Layover: "+label))
		}

	default:
		if i == 0 && strings.TrimSpace(seg.Details) != "" {
			e.Activities = append(e.Activities, activityItem(seg, firstNonEmpty(seg.Title, seg.Details)))
		}
	}
}

func (d *dayState) dispatchTravel(seg core.Segment, cat core.Category, i, n int) {
	e := &d.entry
	isFlight := cat == core.CategoryFlight

	switch {
	case i == 0:
		item := travelItem(seg)
		item.IsDeparture = true
		item.BackupPlan = BackupPlan(seg)
		e.Travel = append(e.Travel, item)
	case isFlight && i == n-1:
		item := travelItem(seg)
		item.IsArrival = true
		e.Travel = append(e.Travel, item)
	case isFlight:
		e.IsInFlight = true
		e.InFlightDetails = &core.InFlightDetails{
			Route:  seg.Route,
			Flight: flightIdentifier(seg),
			Note:   DateLineNote,
		}
	}
}

func travelItem(seg core.Segment) core.TravelItem {
	return core.TravelItem{
		ID:               seg.ID,
		Type:             seg.Type,
		Status:           seg.Status,
		Title:            seg.Title,
		Date:             seg.Date,
		DateEnd:          seg.DateEnd,
		TimeStart:        seg.TimeStart,
		TimeEnd:          seg.TimeEnd,
		Location:         seg.Location,
		Route:            seg.Route,
		Details:          seg.Details,
		Airline:          seg.Airline,
		Flight:           seg.Flight,
		Aircraft:         seg.Aircraft,
		CabinClass:       seg.CabinClass,
		DepartureAirport: seg.DepartureAirport,
		ArrivalAirport:   seg.ArrivalAirport,
		EstimatedCost:    copyFloat(seg.EstimatedCost),
		Currency:         seg.Currency,
	}
}

func flightIdentifier(seg core.Segment) string {
	flight := strings.TrimSpace(seg.Flight)
	if flight == "" {
		return firstNonEmpty(seg.Title, seg.ID)
	}
	return strings.TrimSpace(strings.TrimSpace(seg.Airline) + " " + flight)
}

// shelterInfo describes night i of an n-date stay. The last date is checkout,
// so a stay has n-1 nights, except that a one-date stay counts as one night.
func shelterInfo(seg core.Segment, i, n int) core.ShelterInfo {
	nights := n - 1
	if nights < 1 {
		nights = 1
	}
	info := core.ShelterInfo{
		SegmentID:      seg.ID,
		Location:       seg.Location,
		Status:         seg.Status,
		EstimatedCost:  copyFloat(seg.EstimatedCost),
		Currency:       seg.Currency,
		IsMultiDayStay: nights > 1,
		DayOfStay:      i + 1,
		TotalStayDays:  nights,
	}

	checkInTime, checkOutTime := seg.TimeStart, seg.TimeEnd
	if p := seg.Shelter; p != nil {
		info.Name = firstNonEmpty(p.Name, seg.Title, seg.Location)
		info.Address = p.Address
		info.ConfirmationNumber = p.ConfirmationNumber
		info.Phone = p.Phone
		info.Notes = firstNonEmpty(p.Notes, seg.Note)
		checkInTime = firstNonEmpty(p.CheckInTime, checkInTime)
		checkOutTime = firstNonEmpty(p.CheckOutTime, checkOutTime)
	} else {
		info.Name = firstNonEmpty(seg.Title, seg.Location, seg.Details)
		info.Notes = firstNonEmpty(seg.Note, seg.Details)
	}

	if i == 0 {
		info.CheckIn = firstNonEmpty(checkInTime, seg.Date)
	}
	if n > 1 && i == n-2 {
		info.CheckOut = firstNonEmpty(checkOutTime, seg.DateEnd)
	}
	return info
}

func mealItem(seg core.Segment) core.MealItem {
	return core.MealItem{
		ID:            seg.ID,
		Name:          seg.Label(),
		Status:        seg.Status,
		Time:          seg.TimeStart,
		Location:      seg.Location,
		Details:       seg.Details,
		EstimatedCost: copyFloat(seg.EstimatedCost),
		Currency:      seg.Currency,
	}
}

func activityItem(seg core.Segment, name string) core.ActivityItem {
	return core.ActivityItem{
		ID:            seg.ID,
		SegmentID:     seg.ID,
		Name:          name,
		Type:          seg.Type,
		Category:      seg.Type,
		Status:        seg.Status,
		Time:          seg.TimeStart,
		TimeEnd:       seg.TimeEnd,
		Location:      seg.Location,
		Details:       seg.Details,
		EstimatedCost: copyFloat(seg.EstimatedCost),
		Currency:      seg.Currency,
	}
}

func subActivityItem(seg core.Segment, sub core.SubActivity, idx int) core.ActivityItem {
	id := sub.ID
	if id == "" {
		id = fmt.Sprintf("%s-%d", seg.ID, idx+1)
	}
	currency := sub.Currency
	if currency == "" && sub.EstimatedCost != nil {
		currency = seg.Currency
	}
	return core.ActivityItem{
		ID:            id,
		SegmentID:     seg.ID,
		Name:          sub.Name,
		Type:          seg.Type,
		Category:      firstNonEmpty(sub.Category, seg.Type),
		Status:        seg.Status,
		Time:          sub.Time,
		TimeEnd:       sub.TimeEnd,
		Location:      firstNonEmpty(sub.Location, seg.Location),
		Details:       sub.Notes,
		EstimatedCost: copyFloat(sub.EstimatedCost),
		Currency:      currency,
		Lat:           copyFloat(sub.Lat),
		Lng:           copyFloat(sub.Lng),
	}
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
