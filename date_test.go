package tradebook

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := NewDate(2025, 7, 31)
	d2 := NewDate(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", NewDate(2025, time.January, 15), false},
		{"2025-7-1", NewDate(2025, time.July, 1), false},
		{"2024-02-29", NewDate(2024, time.February, 29), false},
		{"2023-02-29", Date{}, true},
		{"15/01/2025", Date{}, true},
		{"invalid-date", Date{}, true},
		{"", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.err {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.err)
				return
			}
			if tt.err && !errors.Is(err, ErrInvalidDateFormat) {
				t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDateFormat", tt.input, err)
			}
			if !tt.err && got != tt.expected {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDateCompare(t *testing.T) {
	a, b := NewDate(2021, 1, 1), NewDate(2021, 6, 1)
	if !a.Before(b) || a.After(b) || a.Compare(a) != 0 {
		t.Errorf("invalid ordering between %v and %v", a, b)
	}
	if !(Date{}).Before(a) {
		t.Errorf("the zero date must sort first")
	}
	if got, want := NewDate(2021, 12, 31).Add(1), NewDate(2022, 1, 1); got != want {
		t.Errorf("Add(1) = %v, want %v", got, want)
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		On  Date `json:"on"`
		Off Date `json:"off"`
	}
	if err := json.Unmarshal([]byte(`{"on":"2021-3-4","off":""}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.On != NewDate(2021, 3, 4) || !v.Off.IsZero() {
		t.Errorf("got %v and %v", v.On, v.Off)
	}
	got, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"on":"2021-03-04","off":""}`; string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
