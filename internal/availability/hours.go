package availability

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time within a business day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// BusinessHours is the single contiguous operating window of the provider,
// the same on every day. Open < Close is guaranteed at construction; there is
// no support for overnight-spanning hours.
type BusinessHours struct {
	Location *time.Location
	Open     TimeOfDay
	Close    TimeOfDay
}

// NewBusinessHours parses an IANA zone name and "15:04" open/close clocks.
// Misconfigured hours (open >= close) are rejected here, once, so the scan
// never has to revalidate them.
func NewBusinessHours(timezone, open, close string) (BusinessHours, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	openClock, err := parseClock(open)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("invalid open time %q: %w", open, err)
	}
	closeClock, err := parseClock(close)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("invalid close time %q: %w", close, err)
	}
	if !openClock.before(closeClock) {
		return BusinessHours{}, fmt.Errorf("open time %s must be before close time %s", open, close)
	}
	return BusinessHours{Location: loc, Open: openClock, Close: closeClock}, nil
}

// WindowOn resolves the open and close instants for the calendar day that
// contains t in the business timezone.
func (h BusinessHours) WindowOn(t time.Time) (time.Time, time.Time) {
	local := t.In(h.Location)
	open := time.Date(local.Year(), local.Month(), local.Day(), h.Open.Hour, h.Open.Minute, 0, 0, h.Location)
	close := time.Date(local.Year(), local.Month(), local.Day(), h.Close.Hour, h.Close.Minute, 0, 0, h.Location)
	return open, close
}

func (t TimeOfDay) before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

func parseClock(s string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}
