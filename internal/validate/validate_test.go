package validate

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	// Mid-day UTC, 2026-09-14.
	return func() time.Time {
		return time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)
	}
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	val := New()
	val.now = fixedClock(t)
	return val
}

func fieldErrors(t *testing.T, err error) Errors {
	t.Helper()
	var verrs Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validate.Errors, got %T: %v", err, err)
	}
	return verrs
}

func hasViolation(errs Errors, field, message string) bool {
	for _, fe := range errs {
		if fe.Field == field && fe.Message == message {
			return true
		}
	}
	return false
}

func TestAvailability_Valid(t *testing.T) {
	val := newTestValidator(t)
	err := val.Availability(AvailabilityRequest{
		ServiceID:  "svc-1",
		EmployeeID: "emp-1",
		Date:       "2026-09-15",
		TimeZone:   "America/New_York",
	})
	if err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestAvailability_CollectsEveryViolation(t *testing.T) {
	val := newTestValidator(t)
	err := val.Availability(AvailabilityRequest{})
	errs := fieldErrors(t, err)
	if len(errs) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(errs), errs)
	}
	for _, field := range []string{"service_id", "employee_id", "date", "tz"} {
		if !hasViolation(errs, field, "is required") {
			t.Fatalf("missing required violation for %s in %v", field, errs)
		}
	}
}

func TestAvailability_PastDateRejected(t *testing.T) {
	val := newTestValidator(t)
	err := val.Availability(AvailabilityRequest{
		ServiceID:  "svc-1",
		EmployeeID: "emp-1",
		Date:       "2026-09-13",
		TimeZone:   "UTC",
	})
	errs := fieldErrors(t, err)
	if !hasViolation(errs, "date", "must not be in the past") {
		t.Fatalf("expected past-date violation, got %v", errs)
	}
}

func TestAvailability_TodayAccepted(t *testing.T) {
	val := newTestValidator(t)
	err := val.Availability(AvailabilityRequest{
		ServiceID:  "svc-1",
		EmployeeID: "emp-1",
		Date:       "2026-09-14",
		TimeZone:   "UTC",
	})
	if err != nil {
		t.Fatalf("today must be accepted, got %v", err)
	}
}

func TestAvailability_BadTimezone(t *testing.T) {
	val := newTestValidator(t)
	err := val.Availability(AvailabilityRequest{
		ServiceID:  "svc-1",
		EmployeeID: "emp-1",
		Date:       "2026-09-15",
		TimeZone:   "Not/AZone",
	})
	errs := fieldErrors(t, err)
	if !hasViolation(errs, "tz", "must be a valid IANA time zone") {
		t.Fatalf("expected timezone violation, got %v", errs)
	}
}

func validBooking() BookingRequest {
	return BookingRequest{
		ServiceID:       "svc-1",
		EmployeeID:      "emp-1",
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		Date:            "2026-09-15",
		Time:            "10:30",
		TimeZone:        "UTC",
		DurationMinutes: 30,
	}
}

func TestBooking_Valid(t *testing.T) {
	val := newTestValidator(t)
	if err := val.Booking(validBooking()); err != nil {
		t.Fatalf("expected valid booking, got %v", err)
	}
}

func TestBooking_UnalignedTimeRejected(t *testing.T) {
	val := newTestValidator(t)
	req := validBooking()
	req.Time = "10:10"
	errs := fieldErrors(t, val.Booking(req))
	if !hasViolation(errs, "time", "must fall on a 15 minute boundary") {
		t.Fatalf("expected alignment violation, got %v", errs)
	}
}

func TestBooking_QuarterHoursAccepted(t *testing.T) {
	val := newTestValidator(t)
	for _, clock := range []string{"09:00", "09:15", "09:30", "09:45"} {
		req := validBooking()
		req.Time = clock
		if err := val.Booking(req); err != nil {
			t.Fatalf("expected %s to be accepted, got %v", clock, err)
		}
	}
}

func TestBooking_PastTimeRejected(t *testing.T) {
	val := newTestValidator(t)
	req := validBooking()
	req.Date = "2026-09-14"
	req.Time = "09:00" // now is 12:00 on the 14th
	errs := fieldErrors(t, val.Booking(req))
	if !hasViolation(errs, "time", "must not be in the past") {
		t.Fatalf("expected past-time violation, got %v", errs)
	}
}

func TestBooking_AccumulatesAcrossFields(t *testing.T) {
	val := newTestValidator(t)
	req := validBooking()
	req.ServiceID = ""
	req.Time = "10:10"
	errs := fieldErrors(t, val.Booking(req))
	if len(errs) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(errs), errs)
	}
	if !hasViolation(errs, "service_id", "is required") || !hasViolation(errs, "time", "must fall on a 15 minute boundary") {
		t.Fatalf("unexpected violations: %v", errs)
	}
}

func TestBooking_StartTime(t *testing.T) {
	req := validBooking()
	req.TimeZone = "America/New_York"
	start, err := req.StartTime()
	if err != nil {
		t.Fatalf("StartTime failed: %v", err)
	}
	loc, _ := time.LoadLocation("America/New_York")
	want := time.Date(2026, 9, 15, 10, 30, 0, 0, loc)
	if !start.Equal(want) {
		t.Fatalf("expected %s, got %s", want, start)
	}
}
