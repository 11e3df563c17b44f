// Package http provides HTTP server and handler implementations.
//
// This file implements parsing and validation of request data: the
// activity payload and the query parameters of the read endpoints.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tripcal/internal/calendar"
	"tripcal/internal/core"
)

// maxActivityBody bounds the POST body of a user activity.
const maxActivityBody = 64 << 10

// ActivityRequest is the body of POST /api/days/{date}/activities. The cost
// is given either as a number in estimatedCost or as a decimal string in
// amount ("12,50" and "12.50" are both accepted).
type ActivityRequest struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Time          string   `json:"time"`
	TimeEnd       string   `json:"timeEnd"`
	Location      string   `json:"location"`
	Details       string   `json:"details"`
	EstimatedCost *float64 `json:"estimatedCost"`
	Amount        string   `json:"amount"`
	Currency      string   `json:"currency"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
}

// ParseActivityRequest decodes and normalizes an activity body.
func ParseActivityRequest(w http.ResponseWriter, r *http.Request) (core.ActivityItem, error) {
	body := http.MaxBytesReader(w, r.Body, maxActivityBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req ActivityRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return core.ActivityItem{}, fmt.Errorf("empty request body")
		}
		return core.ActivityItem{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	return req.toItem()
}

func (req ActivityRequest) toItem() (core.ActivityItem, error) {
	item := core.ActivityItem{
		ID:            sanitizeInput(req.ID),
		Name:          sanitizeInput(req.Name),
		Category:      sanitizeInput(req.Category),
		Time:          sanitizeInput(req.Time),
		TimeEnd:       sanitizeInput(req.TimeEnd),
		Location:      sanitizeInput(req.Location),
		Details:       sanitizeInput(req.Details),
		EstimatedCost: req.EstimatedCost,
		Currency:      core.NormalizeCurrency(req.Currency, ""),
		Lat:           req.Lat,
		Lng:           req.Lng,
	}

	if amount := strings.TrimSpace(req.Amount); amount != "" {
		if req.EstimatedCost != nil {
			return core.ActivityItem{}, fmt.Errorf("give either estimatedCost or amount, not both")
		}
		cents, err := core.ParseDecimalToCents(amount)
		if err != nil {
			return core.ActivityItem{}, err
		}
		v := core.Money{Cents: cents}.Amount()
		item.EstimatedCost = &v
	}
	if item.Currency != "" && len(item.Currency) != 3 {
		return core.ActivityItem{}, fmt.Errorf("currency must be a 3-letter code")
	}
	return item, nil
}

// ParseBudgetOverride reads the optional budget query parameter.
func ParseBudgetOverride(query url.Values) (*float64, error) {
	raw := strings.TrimSpace(query.Get("budget"))
	if raw == "" {
		return nil, nil
	}
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid budget %q: %w", raw, err)
	}
	v := core.Money{Cents: cents}.Amount()
	return &v, nil
}

// ParseToday reads the optional today query parameter.
func ParseToday(query url.Values) (string, error) {
	raw := strings.TrimSpace(query.Get("today"))
	if raw == "" {
		return "", nil
	}
	if _, ok := calendar.ParseDay(raw); !ok {
		return "", fmt.Errorf("invalid today %q: want YYYY-MM-DD", raw)
	}
	return raw, nil
}
