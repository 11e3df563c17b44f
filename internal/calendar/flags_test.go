package calendar

import "testing"

func TestLocationFlag(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"", ""},
		{"Tokyo (NRT)", "JP"},
		{"Vancouver YVR", "CA"},
		{"Niseko Village", "JP"},
		{"whistler blackcomb", "CA"},
		{"ABC Lodge, Sapporo", "JP"}, // unknown code falls through to city
		{"Grandma's house", "Grandma's house"},
		{"  Somewhere  ", "Somewhere"},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if got := LocationFlag(tt.location); got != tt.want {
				t.Errorf("LocationFlag(%q) = %q, want %q", tt.location, got, tt.want)
			}
		})
	}
}
