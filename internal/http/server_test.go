package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tripcal/internal/core"
	applog "tripcal/internal/log"
	"tripcal/internal/metrics"
)

type fakeItinerary struct {
	days     []core.DayEntry
	summary  core.BudgetSummary
	err      error
	readyErr error

	gotToday    string
	gotOverride *float64
	added       []core.ActivityItem
	deleted     []string
}

func (f *fakeItinerary) Document(context.Context) (*core.Document, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return &core.Document{TripName: "Japan 2026", Trips: []core.Trip{}}, "hash", nil
}

func (f *fakeItinerary) Calendar(_ context.Context, today string) ([]core.DayEntry, error) {
	f.gotToday = today
	return f.days, f.err
}

func (f *fakeItinerary) Budget(_ context.Context, total *float64) (core.BudgetSummary, error) {
	f.gotOverride = total
	return f.summary, f.err
}

func (f *fakeItinerary) AddActivity(_ context.Context, dateKey string, item core.ActivityItem) (core.ActivityItem, error) {
	if f.err != nil {
		return core.ActivityItem{}, f.err
	}
	if item.ID == "" {
		item.ID = "generated"
	}
	item.IsUserAdded = true
	f.added = append(f.added, item)
	return item, nil
}

func (f *fakeItinerary) DeleteActivity(_ context.Context, dateKey, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, dateKey+"/"+id)
	return nil
}

func (f *fakeItinerary) Ready(context.Context) error { return f.readyErr }

func newTestServer(t *testing.T, svc Itinerary, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil)})
	}
	s := NewServer(":0", svc, opts)
	t.Cleanup(func() { s.limiter.Stop() })
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, r)
	return rec
}

func sampleDays() []core.DayEntry {
	return []core.DayEntry{
		{DateKey: "2026-02-01", DateDisplay: "Sun, Feb 1, 2026", Summary: "Hokkaido", Travel: []core.TravelItem{}, Meals: []core.MealItem{}, Activities: []core.ActivityItem{}},
		{DateKey: "2026-02-02", DateDisplay: "Mon, Feb 2, 2026", Summary: "Hokkaido", Travel: []core.TravelItem{}, Meals: []core.MealItem{}, Activities: []core.ActivityItem{}},
	}
}

func TestHealthAndReady(t *testing.T) {
	svc := &fakeItinerary{}
	s := newTestServer(t, svc, Options{Ping: func(context.Context) error { return nil }})

	if rec := do(s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz: got %d", rec.Code)
	}

	rec := do(s, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz: got %d: %s", rec.Code, rec.Body)
	}

	svc.readyErr = errors.New("document missing")
	rec = do(s, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz with broken document: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "document missing") {
		t.Errorf("expected failure reason in body, got %s", rec.Body)
	}
}

func TestReadyBackendFailure(t *testing.T) {
	s := newTestServer(t, &fakeItinerary{}, Options{Ping: func(context.Context) error { return errors.New("db locked") }})

	rec := do(s, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestCalendarEndpoint(t *testing.T) {
	svc := &fakeItinerary{days: sampleDays()}
	s := newTestServer(t, svc, Options{})

	rec := do(s, http.MethodGet, "/api/calendar?today=2026-02-02", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body)
	}
	if svc.gotToday != "2026-02-02" {
		t.Errorf("today not passed through, got %q", svc.gotToday)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}

	var days []core.DayEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &days); err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 || days[1].DateKey != "2026-02-02" {
		t.Errorf("unexpected days %+v", days)
	}

	if rec := do(s, http.MethodGet, "/api/calendar?today=tomorrow", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid today: got %d", rec.Code)
	}
}

func TestCalendarMissingTrips(t *testing.T) {
	s := newTestServer(t, &fakeItinerary{err: core.ErrMissingTrips}, Options{})

	if rec := do(s, http.MethodGet, "/api/calendar", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestCalendarICSEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeItinerary{days: sampleDays()}, Options{})

	rec := do(s, http.MethodGet, "/api/calendar.ics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || strings.Count(body, "BEGIN:VEVENT") != 2 {
		t.Errorf("unexpected feed:\n%s", body)
	}
	if !strings.Contains(body, "Japan 2026") {
		t.Error("expected calendar name from the document")
	}
}

func TestBudgetEndpoint(t *testing.T) {
	svc := &fakeItinerary{summary: core.BudgetSummary{Budget: 1000, Currency: "USD", Total: 135}}
	s := newTestServer(t, svc, Options{})

	rec := do(s, http.MethodGet, "/api/budget?budget=1234,50", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body)
	}
	if svc.gotOverride == nil || *svc.gotOverride != 1234.5 {
		t.Errorf("expected override 1234.5, got %v", svc.gotOverride)
	}

	var summary core.BudgetSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Total != 135 {
		t.Errorf("unexpected summary %+v", summary)
	}

	if rec := do(s, http.MethodGet, "/api/budget?budget=-5", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("negative budget: got %d", rec.Code)
	}
}

func TestAddActivityEndpoint(t *testing.T) {
	svc := &fakeItinerary{}
	s := newTestServer(t, svc, Options{})

	tests := []struct {
		name string
		date string
		body string
		want int
	}{
		{"created", "2026-02-02", `{"name":"Karaoke","amount":"30,00","currency":"jpy"}`, http.StatusCreated},
		{"bad date", "2026-13-40", `{"name":"Karaoke"}`, http.StatusBadRequest},
		{"unknown field", "2026-02-02", `{"name":"Karaoke","price":3}`, http.StatusUnprocessableEntity},
		{"empty body", "2026-02-02", "", http.StatusUnprocessableEntity},
		{"both costs", "2026-02-02", `{"name":"x","amount":"1","estimatedCost":1}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/days/"+tt.date+"/activities", tt.body)
			if rec.Code != tt.want {
				t.Errorf("got %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	if len(svc.added) != 1 {
		t.Fatalf("expected 1 added activity, got %d", len(svc.added))
	}
	got := svc.added[0]
	if got.EstimatedCost == nil || *got.EstimatedCost != 30 || got.Currency != "JPY" {
		t.Errorf("unexpected activity %+v", got)
	}
}

func TestAddActivityServiceValidation(t *testing.T) {
	s := newTestServer(t, &fakeItinerary{err: core.ErrEmptyName}, Options{})

	rec := do(s, http.MethodPost, "/api/days/2026-02-02/activities", `{"name":""}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Errorf("expected JSON error body, got %s", rec.Body)
	}
}

func TestDeleteActivityEndpoint(t *testing.T) {
	svc := &fakeItinerary{}
	s := newTestServer(t, svc, Options{})

	rec := do(s, http.MethodDelete, "/api/days/2026-02-02/activities/a1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("got %d: %s", rec.Code, rec.Body)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "2026-02-02/a1" {
		t.Errorf("unexpected deletes %v", svc.deleted)
	}

	svc.err = core.ErrNotFound
	if rec := do(s, http.MethodDelete, "/api/days/2026-02-02/activities/zzz", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeItinerary{}, Options{})

	if rec := do(s, http.MethodPost, "/api/calendar", `{}`); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestRateLimitOnEdits(t *testing.T) {
	svc := &fakeItinerary{}
	s := newTestServer(t, svc, Options{RequestsPerMinute: 1})

	if rec := do(s, http.MethodPost, "/api/days/2026-02-02/activities", `{"name":"a"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first edit: got %d", rec.Code)
	}
	rec := do(s, http.MethodPost, "/api/days/2026-02-02/activities", `{"name":"b"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second edit: got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Error("expected Retry-After header")
	}
	if rec := do(s, http.MethodGet, "/api/calendar", ""); rec.Code != http.StatusOK {
		t.Errorf("reads are not limited, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewCollector()
	m.CacheHit()
	s := newTestServer(t, &fakeItinerary{}, Options{Metrics: m})

	rec := do(s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tripcal_") {
		t.Errorf("expected tripcal metrics, got:\n%s", rec.Body)
	}

	s = newTestServer(t, &fakeItinerary{}, Options{})
	if rec := do(s, http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("metrics disabled: expected 404, got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, &fakeItinerary{}, Options{})

	rec := do(s, http.MethodGet, "/healthz", "")
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected X-Frame-Options header")
	}
}
