package core

import "strings"

// Status is the booking state vocabulary of a segment. The zero value means
// the status was absent from the source, which is distinct from StatusUnset.
type Status string

const (
	StatusNone          Status = ""
	StatusBooked        Status = "BOOKED"
	StatusPlanned       Status = "PLANNED"
	StatusPlannedWarn   Status = "PLANNED_WARN"
	StatusBuffer        Status = "BUFFER"
	StatusToBook        Status = "TO_BOOK"
	StatusWeekendSki    Status = "WEEKEND_SKI"
	StatusOptional      Status = "OPTIONAL"
	StatusIfConditional Status = "IF_CONDITIONAL"
	StatusUnset         Status = "UNSET"
)

// ParseStatus normalizes a raw status string. Unrecognized values map to
// StatusUnset, blank values to StatusNone.
func ParseStatus(raw string) Status {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusNone:
		return StatusNone
	case StatusBooked, StatusPlanned, StatusPlannedWarn, StatusBuffer,
		StatusToBook, StatusWeekendSki, StatusOptional, StatusIfConditional, StatusUnset:
		return s
	default:
		return StatusUnset
	}
}

// UnmarshalText lets JSON and YAML decoding normalize the vocabulary.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

// Category is the closed set of dispatch variants derived from a segment's
// open type string.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryFlight
	CategoryGround
	CategoryStay
	CategoryMeal
	CategoryActivity
	CategoryLayover
)

var categoryByType = map[string]Category{
	"flight":     CategoryFlight,
	"travel":     CategoryGround,
	"transit":    CategoryGround,
	"bus":        CategoryGround,
	"airport":    CategoryGround,
	"stay":       CategoryStay,
	"check-in":   CategoryStay,
	"meal":       CategoryMeal,
	"activity":   CategoryActivity,
	"explore":    CategoryActivity,
	"prep":       CategoryActivity,
	"ski setup":  CategoryActivity,
	"activities": CategoryActivity,
	"layover":    CategoryLayover,
}

// ParseCategory matches case-insensitively; anything unknown is Generic.
func ParseCategory(segmentType string) Category {
	if c, ok := categoryByType[strings.ToLower(strings.TrimSpace(segmentType))]; ok {
		return c
	}
	return CategoryGeneric
}

// IsTravel reports whether the category marks its days as travel days.
func (c Category) IsTravel() bool {
	return c == CategoryFlight || c == CategoryGround
}

func (c Category) String() string {
	switch c {
	case CategoryFlight:
		return "flight"
	case CategoryGround:
		return "ground"
	case CategoryStay:
		return "stay"
	case CategoryMeal:
		return "meal"
	case CategoryActivity:
		return "activity"
	case CategoryLayover:
		return "layover"
	default:
		return "generic"
	}
}
