package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseActivityRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantName string
		wantCost float64
		wantCur  string
	}{
		{"decimal comma amount", `{"name":"  Onsen\u0007 ","amount":"12,345","currency":" jpy "}`, false, "Onsen", 12.35, "JPY"},
		{"numeric cost", `{"name":"Taxi","estimatedCost":18.5}`, false, "Taxi", 18.5, ""},
		{"no cost", `{"name":"Walk"}`, false, "Walk", 0, ""},
		{"bad amount", `{"name":"x","amount":"abc"}`, true, "", 0, ""},
		{"zero amount", `{"name":"x","amount":"0"}`, true, "", 0, ""},
		{"bad currency", `{"name":"x","currency":"yen"}`, false, "x", 0, "YEN"},
		{"long currency", `{"name":"x","currency":"EURO"}`, true, "", 0, ""},
		{"malformed", `{"name":`, true, "", 0, ""},
		{"trailing unknown", `{"name":"x","bogus":true}`, true, "", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			item, err := ParseActivityRequest(httptest.NewRecorder(), r)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", item)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", item.Name, tt.wantName)
			}
			if item.Currency != tt.wantCur {
				t.Errorf("Currency = %q, want %q", item.Currency, tt.wantCur)
			}
			var cost float64
			if item.EstimatedCost != nil {
				cost = *item.EstimatedCost
			}
			if cost != tt.wantCost {
				t.Errorf("cost = %v, want %v", cost, tt.wantCost)
			}
		})
	}
}

func TestParseBudgetOverride(t *testing.T) {
	got, err := ParseBudgetOverride(url.Values{})
	if err != nil || got != nil {
		t.Errorf("absent budget: got %v, %v", got, err)
	}

	got, err = ParseBudgetOverride(url.Values{"budget": {"2500.75"}})
	if err != nil || got == nil || *got != 2500.75 {
		t.Errorf("budget 2500.75: got %v, %v", got, err)
	}

	if _, err := ParseBudgetOverride(url.Values{"budget": {"lots"}}); err == nil {
		t.Error("expected error for non-numeric budget")
	}
}

func TestParseToday(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"2026-02-02", "2026-02-02", false},
		{" 2026-02-02 ", "2026-02-02", false},
		{"2026-02-30", "", true},
		{"02/02/2026", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseToday(url.Values{"today": {tt.in}})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
