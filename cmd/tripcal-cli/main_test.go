package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tripcal/internal/core"
)

const testTrip = `{
  "tripName": "Test Trip",
  "budget": {"total": 1000, "currency": "USD"},
  "trips": [{
    "name": "Leg one",
    "segments": [
      {"id": "s1", "type": "stay", "date": "2026-02-01", "dateEnd": "2026-02-03", "status": "booked", "estimatedCost": 100, "currency": "USD", "title": "Lodge"},
      {"id": "m1", "type": "meal", "date": "2026-02-02", "title": "Dinner", "estimatedCost": 20, "currency": "USD"}
    ]
  }]
}`

func writeTrip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trip.json")
	if err := os.WriteFile(path, []byte(testTrip), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{docPath: writeTrip(t), format: "json", today: "2026-02-02"}, &out)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var days []core.DayEntry
	if err := json.Unmarshal(out.Bytes(), &days); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(days))
	}
	for _, d := range days {
		if d.IsToday != (d.DateKey == "2026-02-02") {
			t.Errorf("%s: IsToday = %v", d.DateKey, d.IsToday)
		}
	}
}

func TestRun_ICS(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), options{docPath: writeTrip(t), format: "ics"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	for _, want := range []string{"BEGIN:VCALENDAR", "Test Trip", "2026-02-02@tripcal"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_ICSStamp(t *testing.T) {
	doc := writeTrip(t)
	opts := options{docPath: doc, format: "ics", stamp: "2026-01-01T12:00:00Z"}

	var first, second bytes.Buffer
	if err := run(context.Background(), opts, &first); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if err := run(context.Background(), opts, &second); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if first.String() != second.String() {
		t.Error("a fixed -stamp should give identical feeds")
	}
	if !strings.Contains(first.String(), "DTSTAMP:20260101T120000Z") {
		t.Errorf("stamp missing from feed:\n%s", first.String())
	}
}

func TestRun_Budget(t *testing.T) {
	tests := []struct {
		name   string
		budget string
		want   []string
	}{
		{"document budget", "", []string{"1000.00 USD", "120.00 USD", "880.00 USD", "12.0%"}},
		{"override", "240", []string{"240.00 USD", "120.00 USD", "50.0%"}},
		{"comma decimal override", "240,00", []string{"240.00 USD", "50.0%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), options{docPath: writeTrip(t), format: "budget", budget: tt.budget, currency: "USD"}, &out)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output %q missing %q", out.String(), want)
				}
			}
		})
	}
}

func TestRun_SQLiteOverlay(t *testing.T) {
	doc := writeTrip(t)
	db := filepath.Join(t.TempDir(), "tripcal.db")

	var out bytes.Buffer
	if err := run(context.Background(), options{docPath: doc, format: "budget", dbPath: db, currency: "USD"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "120.00 USD") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	doc := writeTrip(t)
	tests := []struct {
		name    string
		opts    options
		wantErr error
		msg     string
	}{
		{name: "missing doc", opts: options{format: "json"}, msg: "-doc is required"},
		{name: "bad today", opts: options{docPath: doc, format: "json", today: "02/02/2026"}, wantErr: core.ErrInvalidDate},
		{name: "bad budget", opts: options{docPath: doc, format: "budget", budget: "lots"}, wantErr: core.ErrInvalidAmount},
		{name: "NaN budget", opts: options{docPath: doc, format: "budget", budget: "NaN"}, wantErr: core.ErrInvalidAmount},
		{name: "infinite budget", opts: options{docPath: doc, format: "budget", budget: "Inf"}, wantErr: core.ErrInvalidAmount},
		{name: "negative budget", opts: options{docPath: doc, format: "budget", budget: "-5"}, wantErr: core.ErrInvalidAmount},
		{name: "bad stamp", opts: options{docPath: doc, format: "ics", stamp: "yesterday"}, wantErr: core.ErrInvalidDate},
		{name: "unknown format", opts: options{docPath: doc, format: "xml"}, msg: "unknown -format"},
		{name: "missing file", opts: options{docPath: filepath.Join(t.TempDir(), "none.json"), format: "json"}, msg: "load document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.opts, &bytes.Buffer{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.msg != "" && !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %v, want containing %q", err, tt.msg)
			}
		})
	}
}
