package core

import "time"

// CurrencyAmount is a spent amount in one currency.
type CurrencyAmount struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// BudgetSummary is the roll-up of every counted cost against the budget.
type BudgetSummary struct {
	Budget      float64          `json:"budget"`
	Currency    string           `json:"currency"`
	ByCurrency  []CurrencyAmount `json:"byCurrency"`
	Total       float64          `json:"total"`
	Remaining   float64          `json:"remaining"`
	PercentUsed float64          `json:"percentUsed"`
	ItemCount   int              `json:"itemCount"`
	// Unconverted lists currencies missing from the rate table; they are
	// counted 1:1 in Total.
	Unconverted []string `json:"unconverted,omitempty"`
}

// BudgetSnapshot is a stored budget summary, taken when the overlay changes
// or on the snapshot schedule.
type BudgetSnapshot struct {
	ID           int64         `json:"id"`
	TakenAt      time.Time     `json:"takenAt"`
	Trigger      string        `json:"trigger"`
	DocumentHash string        `json:"documentHash"`
	Summary      BudgetSummary `json:"summary"`
}
