// Package budget rolls the cost-bearing items of a projected calendar up into
// spent, remaining and percent-used figures against the trip budget.
//
// Multi-day segments are projected onto several days, so every kind of item
// is counted under an identity key at most once.
package budget

import (
	"sort"
	"strconv"

	"tripcal/internal/core"
)

// DefaultCurrency is the reference currency when the budget names none.
const DefaultCurrency = "USD"

type tally struct {
	reference string
	seen      map[string]struct{}
	cents     map[string]int64
	count     int
}

func (t *tally) add(key string, cost *float64, currency string) {
	if cost == nil {
		return
	}
	if key != "" {
		if _, dup := t.seen[key]; dup {
			return
		}
		t.seen[key] = struct{}{}
	}
	cents, ok := core.CentsFromFloat(*cost)
	if !ok {
		return
	}
	cur := core.NormalizeCurrency(currency, t.reference)
	t.cents[cur] += cents
	t.count++
}

// Rollup sums every counted item per currency and converts the sums to the
// budget currency with rates. A nil rates table uses DefaultRates.
func Rollup(days []core.DayEntry, overlay core.Overlay, b core.Budget, rates Rates) core.BudgetSummary {
	if rates == nil {
		rates = DefaultRates
	}
	t := &tally{
		reference: core.NormalizeCurrency(b.Currency, DefaultCurrency),
		seen:      make(map[string]struct{}),
		cents:     make(map[string]int64),
	}

	for _, day := range days {
		for _, item := range day.Travel {
			t.add("travel:"+travelKey(item), item.EstimatedCost, item.Currency)
		}
		if sh := day.Shelter; sh.IsFirstNight() && sh.EstimatedCost != nil {
			t.add("shelter:"+sh.Name+"|"+strconv.FormatInt(core.ToCents(*sh.EstimatedCost), 10), sh.EstimatedCost, sh.Currency)
		}
		for _, meal := range day.Meals {
			t.add("meal:"+meal.ID, meal.EstimatedCost, meal.Currency)
		}
		for _, act := range day.Activities {
			if overlay.IsDeleted(day.DateKey, act.ID) {
				continue
			}
			key := act.ID
			if key == "" {
				key = day.DateKey + "|" + act.Name
			}
			t.add("activity:"+key, act.EstimatedCost, act.Currency)
		}
	}

	dates := make([]string, 0, len(overlay.Added))
	for date := range overlay.Added {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		for _, act := range overlay.Added[date] {
			t.add("", act.EstimatedCost, act.Currency)
		}
	}

	return t.summary(b.Total, rates)
}

// travelKey identifies the segment behind a travel item. Departure and
// arrival items of one segment share their start date, so an id-less segment
// is still counted once.
func travelKey(item core.TravelItem) string {
	if item.ID != "" {
		return item.ID
	}
	return item.Date + "|" + item.Type + "|" + item.Title + "|" + item.Route
}

// summary treats a budget that is not a finite amount within
// core.MaxAmount as no budget.
func (t *tally) summary(budget float64, rates Rates) core.BudgetSummary {
	budgetCents, ok := core.CentsFromFloat(budget)
	if !ok {
		budget, budgetCents = 0, 0
	}

	currencies := make([]string, 0, len(t.cents))
	for cur := range t.cents {
		currencies = append(currencies, cur)
	}
	sort.Strings(currencies)

	s := core.BudgetSummary{
		Budget:     budget,
		Currency:   t.reference,
		ByCurrency: make([]core.CurrencyAmount, 0, len(currencies)),
		ItemCount:  t.count,
	}
	var total int64
	for _, cur := range currencies {
		cents := t.cents[cur]
		s.ByCurrency = append(s.ByCurrency, core.CurrencyAmount{
			Currency: cur,
			Amount:   core.Money{Cents: cents, Currency: cur}.Amount(),
		})
		converted, ok := rates.ConvertCents(cents, cur, t.reference)
		if !ok {
			s.Unconverted = append(s.Unconverted, cur)
		}
		total += converted
	}

	s.Total = core.Money{Cents: total, Currency: t.reference}.Amount()
	s.Remaining = core.Money{Cents: budgetCents - total}.Amount()
	if budgetCents != 0 {
		s.PercentUsed = float64(total) * 100 / float64(budgetCents)
	}
	return s
}
