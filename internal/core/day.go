package core

type (
	// DayEntry is the per-calendar-date projection of every segment that
	// touches the date. Entries are read-only once projection returns.
	DayEntry struct {
		DateKey         string           `json:"dateKey"`
		DateDisplay     string           `json:"dateDisplay"`
		Timezone        string           `json:"timezone"`
		Summary         string           `json:"summary"`
		Location        string           `json:"location,omitempty"`
		Travel          []TravelItem     `json:"travel"`
		Shelter         ShelterInfo      `json:"shelter"`
		Meals           []MealItem       `json:"meals"`
		Activities      []ActivityItem   `json:"activities"`
		IsInFlight      bool             `json:"isInFlight,omitempty"`
		InFlightDetails *InFlightDetails `json:"inFlightDetails,omitempty"`
		IsToday         bool             `json:"isToday,omitempty"`
		Metadata        DayMetadata      `json:"metadata"`
	}

	DayMetadata struct {
		HasTravel      bool     `json:"hasTravel"`
		LocationFlags  []string `json:"locationFlags"`
		EstimatedCost  float64  `json:"estimatedCost"`
		CostCurrencies []string `json:"costCurrencies"`
		UnbookedCount  int      `json:"unbootedCount"`
		HasUnbooked    bool     `json:"hasUnbooked"`
	}

	TravelItem struct {
		ID               string         `json:"id"`
		Type             string         `json:"type"`
		Status           Status         `json:"status,omitempty"`
		Title            string         `json:"title,omitempty"`
		Date             string         `json:"date"`
		DateEnd          string         `json:"dateEnd,omitempty"`
		TimeStart        string         `json:"timeStart,omitempty"`
		TimeEnd          string         `json:"timeEnd,omitempty"`
		Location         string         `json:"location,omitempty"`
		Route            string         `json:"route,omitempty"`
		Details          string         `json:"details,omitempty"`
		Airline          string         `json:"airline,omitempty"`
		Flight           string         `json:"flight,omitempty"`
		Aircraft         string         `json:"aircraft,omitempty"`
		CabinClass       string         `json:"cabinClass,omitempty"`
		DepartureAirport string         `json:"departureAirport,omitempty"`
		ArrivalAirport   string         `json:"arrivalAirport,omitempty"`
		EstimatedCost    *float64       `json:"estimatedCost,omitempty"`
		Currency         string         `json:"currency,omitempty"`
		IsDeparture      bool           `json:"isDeparture,omitempty"`
		IsArrival        bool           `json:"isArrival,omitempty"`
		BackupPlan       []BackupOption `json:"backupPlan,omitempty"`
	}

	// ShelterInfo marshals to {} when no stay covers the day.
	ShelterInfo struct {
		SegmentID          string   `json:"segmentId,omitempty"`
		Name               string   `json:"name,omitempty"`
		Address            string   `json:"address,omitempty"`
		Location           string   `json:"location,omitempty"`
		ConfirmationNumber string   `json:"confirmationNumber,omitempty"`
		Phone              string   `json:"phone,omitempty"`
		Notes              string   `json:"notes,omitempty"`
		Status             Status   `json:"status,omitempty"`
		EstimatedCost      *float64 `json:"estimatedCost,omitempty"`
		Currency           string   `json:"currency,omitempty"`
		IsMultiDayStay     bool     `json:"isMultiDayStay,omitempty"`
		DayOfStay          int      `json:"dayOfStay,omitempty"`
		TotalStayDays      int      `json:"totalStayDays,omitempty"`
		CheckIn            string   `json:"checkIn,omitempty"`
		CheckOut           string   `json:"checkOut,omitempty"`
	}

	MealItem struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		Status        Status   `json:"status,omitempty"`
		Time          string   `json:"time,omitempty"`
		Location      string   `json:"location,omitempty"`
		Details       string   `json:"details,omitempty"`
		EstimatedCost *float64 `json:"estimatedCost,omitempty"`
		Currency      string   `json:"currency,omitempty"`
	}

	ActivityItem struct {
		ID            string   `json:"id,omitempty"`
		SegmentID     string   `json:"segmentId,omitempty"`
		Name          string   `json:"name"`
		Type          string   `json:"type,omitempty"`
		Category      string   `json:"category,omitempty"`
		Status        Status   `json:"status,omitempty"`
		Time          string   `json:"time,omitempty"`
		TimeEnd       string   `json:"timeEnd,omitempty"`
		Location      string   `json:"location,omitempty"`
		Details       string   `json:"details,omitempty"`
		EstimatedCost *float64 `json:"estimatedCost,omitempty"`
		Currency      string   `json:"currency,omitempty"`
		Lat           *float64 `json:"lat,omitempty"`
		Lng           *float64 `json:"lng,omitempty"`
		IsUserAdded   bool     `json:"isUserAdded,omitempty"`
	}

	InFlightDetails struct {
		Route  string `json:"route,omitempty"`
		Flight string `json:"flight,omitempty"`
		Note   string `json:"note"`
	}

	BackupOption struct {
		ID          string `json:"id"`
		Priority    int    `json:"priority"`
		Description string `json:"description"`
		Status      Status `json:"status"`
	}

	// Overlay carries user edits keyed by date: activities added by the
	// user and ids of projected activities the user deleted.
	Overlay struct {
		Added   map[string][]ActivityItem
		Deleted map[string][]string
	}
)

// Populated reports whether a stay has written this shelter.
func (s ShelterInfo) Populated() bool {
	return s.DayOfStay > 0
}

// IsFirstNight reports whether the day is the check-in night of a stay.
func (s ShelterInfo) IsFirstNight() bool {
	return s.DayOfStay == 1
}

// Cost returns the shelter's estimated cost, or zero when absent.
func (s ShelterInfo) Cost() float64 {
	if s.EstimatedCost == nil {
		return 0
	}
	return *s.EstimatedCost
}

// Validate checks a user-authored activity before it is persisted.
func (a ActivityItem) Validate() error {
	if a.Name == "" {
		return ErrEmptyName
	}
	if a.EstimatedCost != nil && *a.EstimatedCost < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsDeleted reports whether the overlay hides the activity on the date.
func (o Overlay) IsDeleted(dateKey, id string) bool {
	if id == "" {
		return false
	}
	for _, d := range o.Deleted[dateKey] {
		if d == id {
			return true
		}
	}
	return false
}
