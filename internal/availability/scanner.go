package availability

import (
	"sort"
	"time"
)

// DefaultMinimumSlotMinutes is the granularity below which a gap between
// bookings is not worth offering.
const DefaultMinimumSlotMinutes = 15

// BookedInterval is one committed appointment occupying an employee's time.
type BookedInterval struct {
	Start   time.Time
	Minutes int
}

// Slot is a bookable span of free time. Minutes is always at least the
// minimum slot length passed to Scan.
type Slot struct {
	Start   time.Time
	Minutes int
}

func (b BookedInterval) end() time.Time {
	return b.Start.Add(time.Duration(b.Minutes) * time.Minute)
}

// Scan walks the booked intervals in chronological order and returns the free
// slots between them, scoped day by day to the business operating window.
//
// The scan alternates between two states: between days, with no cursors set,
// and scanning a day, tracking the next instant not yet known to be busy and
// that day's close. A day is opened by the first booking that falls on it and
// closed out (emitting the tail slot to close-of-business, if wide enough)
// when a booking past its close is encountered or the input runs out. A day
// with no bookings inside the search window is therefore never visited and
// contributes no slots at all.
//
// The input slice is not mutated; bookings need not arrive sorted. Gaps
// shorter than minSlotMinutes are swallowed, never offered as fragments.
func Scan(hours BusinessHours, booked []BookedInterval, minSlotMinutes int) []Slot {
	if minSlotMinutes <= 0 {
		minSlotMinutes = DefaultMinimumSlotMinutes
	}

	sorted := make([]BookedInterval, len(booked))
	copy(sorted, booked)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var (
		slots    []Slot
		day      dayScan
		scanning bool
	)
	for _, b := range sorted {
		if scanning && !b.Start.Before(day.close) {
			// Booking lands beyond the current day's close: finish this day
			// before opening the one the booking belongs to.
			slots = day.finish(slots, minSlotMinutes)
			scanning = false
		}
		if !scanning {
			open, close := hours.WindowOn(b.Start)
			day = dayScan{cursor: open, close: close}
			scanning = true
		}
		slots = day.visit(slots, b, minSlotMinutes)
	}
	if scanning {
		slots = day.finish(slots, minSlotMinutes)
	}
	return slots
}

// dayScan holds the cursors for the day currently being scanned.
type dayScan struct {
	cursor time.Time // next instant not yet known to be busy
	close  time.Time // close of business for this day
}

func (d *dayScan) visit(slots []Slot, b BookedInterval, minSlotMinutes int) []Slot {
	gap := minutesBetween(d.cursor, b.Start)
	toClose := minutesBetween(d.cursor, d.close)

	switch {
	case gap < minSlotMinutes:
		// Too narrow to offer (or the booking overlaps the cursor); swallow
		// the gap without emitting anything.
	case gap < toClose:
		slots = append(slots, Slot{Start: d.cursor, Minutes: gap})
	default:
		// Booking starts at or after close. Not possible under valid data,
		// but must not blow up; skip it and let the close-out check recover.
	}

	// The cursor only ever moves forward. A booking fully contained in an
	// earlier one must not drag it back, or the scan would re-offer busy time.
	if end := b.end(); end.After(d.cursor) {
		d.cursor = end
	}
	return slots
}

func (d *dayScan) finish(slots []Slot, minSlotMinutes int) []Slot {
	if toClose := minutesBetween(d.cursor, d.close); toClose >= minSlotMinutes {
		slots = append(slots, Slot{Start: d.cursor, Minutes: toClose})
	}
	return slots
}

func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}
