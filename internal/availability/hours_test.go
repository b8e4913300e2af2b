package availability

import (
	"testing"
	"time"
)

func TestNewBusinessHours_RejectsBadConfig(t *testing.T) {
	cases := []struct {
		name     string
		timezone string
		open     string
		close    string
	}{
		{"unknown zone", "Mars/Olympus", "09:00", "17:00"},
		{"open after close", "UTC", "18:00", "09:00"},
		{"open equals close", "UTC", "09:00", "09:00"},
		{"bad clock", "UTC", "9am", "17:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewBusinessHours(tc.timezone, tc.open, tc.close); err == nil {
				t.Fatalf("expected error for %s/%s/%s", tc.timezone, tc.open, tc.close)
			}
		})
	}
}

func TestBusinessHours_WindowOn(t *testing.T) {
	h, err := NewBusinessHours("America/New_York", "09:00", "17:00")
	if err != nil {
		t.Fatalf("NewBusinessHours failed: %v", err)
	}

	// 2026-09-14 13:30 UTC is 09:30 in New York; the window must be that
	// New York calendar day, not the UTC one.
	instant := time.Date(2026, 9, 14, 13, 30, 0, 0, time.UTC)
	open, close := h.WindowOn(instant)

	wantOpen := time.Date(2026, 9, 14, 9, 0, 0, 0, h.Location)
	wantClose := time.Date(2026, 9, 14, 17, 0, 0, 0, h.Location)
	if !open.Equal(wantOpen) {
		t.Fatalf("expected open %s, got %s", wantOpen, open)
	}
	if !close.Equal(wantClose) {
		t.Fatalf("expected close %s, got %s", wantClose, close)
	}
	if minutesBetween(open, close) != 480 {
		t.Fatalf("expected a 480 minute day, got %d", minutesBetween(open, close))
	}

	// An evening UTC instant that has already rolled into the next UTC day
	// still resolves against the local calendar day.
	lateInstant := time.Date(2026, 9, 15, 2, 0, 0, 0, time.UTC) // 22:00 on the 14th in New York
	lateOpen, _ := h.WindowOn(lateInstant)
	if !lateOpen.Equal(wantOpen) {
		t.Fatalf("expected open %s for late instant, got %s", wantOpen, lateOpen)
	}
}
