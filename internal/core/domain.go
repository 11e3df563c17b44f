package core

import (
	"errors"
	"strings"
)

type (
	// Document is the trip document as supplied by the persistence layer.
	Document struct {
		TripName  string     `json:"tripName,omitempty" yaml:"tripName,omitempty"`
		Budget    *Budget    `json:"budget,omitempty" yaml:"budget,omitempty"`
		Travelers []Traveler `json:"travelers,omitempty" yaml:"travelers,omitempty"`
		Trips     []Trip     `json:"trips" yaml:"trips"`
	}

	Budget struct {
		Total    float64 `json:"total" yaml:"total"`
		Currency string  `json:"currency" yaml:"currency"`
	}

	Traveler struct {
		Name string `json:"name" yaml:"name"`
		Role string `json:"role,omitempty" yaml:"role,omitempty"`
	}

	Trip struct {
		Name     string    `json:"name" yaml:"name"`
		Region   string    `json:"region,omitempty" yaml:"region,omitempty"`
		Timezone string    `json:"timezone,omitempty" yaml:"timezone,omitempty"`
		Segments []Segment `json:"segments" yaml:"segments"`
	}

	// Segment is one planned unit of a trip. Type is an open string; use
	// Category to get the closed dispatch variant.
	Segment struct {
		ID       string `json:"id" yaml:"id"`
		Type     string `json:"type" yaml:"type"`
		Date     string `json:"date" yaml:"date"`
		DateEnd  string `json:"dateEnd,omitempty" yaml:"dateEnd,omitempty"`
		Status   Status `json:"status,omitempty" yaml:"status,omitempty"`
		Title    string `json:"title,omitempty" yaml:"title,omitempty"`
		Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`

		TimeStart string `json:"timeStart,omitempty" yaml:"timeStart,omitempty"`
		TimeEnd   string `json:"timeEnd,omitempty" yaml:"timeEnd,omitempty"`
		Location  string `json:"location,omitempty" yaml:"location,omitempty"`
		Route     string `json:"route,omitempty" yaml:"route,omitempty"`
		Details   string `json:"details,omitempty" yaml:"details,omitempty"`
		Note      string `json:"note,omitempty" yaml:"note,omitempty"`

		EstimatedCost *float64 `json:"estimatedCost,omitempty" yaml:"estimatedCost,omitempty"`
		Currency      string   `json:"currency,omitempty" yaml:"currency,omitempty"`

		Shelter    *ShelterPayload `json:"shelter,omitempty" yaml:"shelter,omitempty"`
		Activities []SubActivity   `json:"activities,omitempty" yaml:"activities,omitempty"`

		// Flight fields
		Airline          string `json:"airline,omitempty" yaml:"airline,omitempty"`
		Flight           string `json:"flight,omitempty" yaml:"flight,omitempty"`
		Aircraft         string `json:"aircraft,omitempty" yaml:"aircraft,omitempty"`
		CabinClass       string `json:"cabinClass,omitempty" yaml:"cabinClass,omitempty"`
		DepartureAirport string `json:"departureAirport,omitempty" yaml:"departureAirport,omitempty"`
		ArrivalAirport   string `json:"arrivalAirport,omitempty" yaml:"arrivalAirport,omitempty"`
	}

	// ShelterPayload is the structured lodging block of a stay segment.
	ShelterPayload struct {
		Name               string `json:"name,omitempty" yaml:"name,omitempty"`
		Address            string `json:"address,omitempty" yaml:"address,omitempty"`
		ConfirmationNumber string `json:"confirmationNumber,omitempty" yaml:"confirmationNumber,omitempty"`
		Phone              string `json:"phone,omitempty" yaml:"phone,omitempty"`
		CheckInTime        string `json:"checkInTime,omitempty" yaml:"checkInTime,omitempty"`
		CheckOutTime       string `json:"checkOutTime,omitempty" yaml:"checkOutTime,omitempty"`
		Notes              string `json:"notes,omitempty" yaml:"notes,omitempty"`
	}

	// SubActivity is one item of an activity segment's structured list.
	SubActivity struct {
		ID            string   `json:"id,omitempty" yaml:"id,omitempty"`
		Name          string   `json:"name" yaml:"name"`
		Time          string   `json:"time,omitempty" yaml:"time,omitempty"`
		TimeEnd       string   `json:"timeEnd,omitempty" yaml:"timeEnd,omitempty"`
		Category      string   `json:"category,omitempty" yaml:"category,omitempty"`
		Location      string   `json:"location,omitempty" yaml:"location,omitempty"`
		EstimatedCost *float64 `json:"estimatedCost,omitempty" yaml:"estimatedCost,omitempty"`
		Currency      string   `json:"currency,omitempty" yaml:"currency,omitempty"`
		Lat           *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
		Lng           *float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
		Notes         string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	}
)

var (
	ErrMissingTrips  = errors.New("document has no trips array")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrNotFound      = errors.New("not found")
)

// Validate checks the boundary precondition of the projector. Everything
// below the trips array is accepted as-is.
func (d *Document) Validate() error {
	if d == nil || d.Trips == nil {
		return ErrMissingTrips
	}
	return nil
}

// Category returns the closed dispatch variant for the segment's type.
func (s Segment) Category() Category {
	return ParseCategory(s.Type)
}

// HasCost reports whether the segment carries an estimated cost.
func (s Segment) HasCost() bool {
	return s.EstimatedCost != nil
}

// Cost returns the estimated cost, or zero when absent.
func (s Segment) Cost() float64 {
	if s.EstimatedCost == nil {
		return 0
	}
	return *s.EstimatedCost
}

// Label picks the most descriptive display name available.
func (s Segment) Label() string {
	for _, v := range []string{s.Title, s.Details, s.Location, s.Note} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return s.Type
}
