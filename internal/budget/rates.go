package budget

import (
	"math"
	"strings"
)

// Rates maps a currency code to the value of one unit of it in US dollars.
// The table is fixed: roll-ups are planning estimates, not accounting.
type Rates map[string]float64

// DefaultRates is the built-in conversion table.
var DefaultRates = Rates{
	"USD": 1,
	"CAD": 0.73,
	"JPY": 0.0067,
	"EUR": 1.08,
	"GBP": 1.27,
	"CHF": 1.13,
	"AUD": 0.66,
	"NZD": 0.60,
	"KRW": 0.00075,
	"TWD": 0.031,
	"HKD": 0.128,
	"SGD": 0.74,
	"THB": 0.028,
}

// Known reports whether the table can convert the currency.
func (r Rates) Known(code string) bool {
	rate, ok := r[strings.ToUpper(code)]
	return ok && rate > 0
}

// ConvertCents converts minor units between currencies, rounding to the
// nearest cent. The second result is false when either currency is unknown,
// in which case the amount is returned unchanged.
func (r Rates) ConvertCents(cents int64, from, to string) (int64, bool) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return cents, true
	}
	if !r.Known(from) || !r.Known(to) {
		return cents, false
	}
	return int64(math.Round(float64(cents) * r[from] / r[to])), true
}
