// Package validate checks availability and booking requests before any work
// happens. Violations are accumulated, not short-circuited, so a caller sees
// every problem with a request in one round trip.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// AvailabilityRequest is an availability-search request as received from the
// caller. Date is the requested calendar day in YYYY-MM-DD form, interpreted
// in TimeZone.
type AvailabilityRequest struct {
	ServiceID  string `json:"service_id" validate:"required"`
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	TimeZone   string `json:"tz" validate:"required,timezone"`
}

// BookingRequest is a booking-commit request. Time is the wall-clock start in
// TimeZone and must fall on a quarter-hour boundary.
type BookingRequest struct {
	ServiceID       string `json:"service_id" validate:"required"`
	EmployeeID      string `json:"employee_id" validate:"required"`
	CustomerName    string `json:"customer_name" validate:"required"`
	CustomerEmail   string `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string `json:"customer_phone"`
	Date            string `json:"date" validate:"required"`
	Time            string `json:"time" validate:"required"`
	TimeZone        string `json:"tz" validate:"required,timezone"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
}

// StartTime combines the request's date, time and zone into the booking's
// start instant. Only meaningful after validation has passed.
func (r BookingRequest) StartTime() (time.Time, error) {
	loc, err := time.LoadLocation(r.TimeZone)
	if err != nil {
		return time.Time{}, err
	}
	day, err := time.ParseInLocation("2006-01-02", r.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := time.Parse("15:04", r.Time)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// FieldError is one violation on one request field.
type FieldError struct {
	Field    string `json:"field"`
	Rejected string `json:"rejected_value"`
	Message  string `json:"message"`
}

// Errors carries every violation found on a request.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a request-validation failure, as
// opposed to a dependency failure.
func IsValidation(err error) bool {
	var verrs Errors
	return errors.As(err, &verrs)
}

type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	val := &Validator{v: v, now: time.Now}
	v.RegisterStructValidation(val.availabilityRules, AvailabilityRequest{})
	v.RegisterStructValidation(val.bookingRules, BookingRequest{})
	return val
}

// Availability returns nil or an Errors value listing every violation.
func (val *Validator) Availability(req AvailabilityRequest) error {
	return val.collect(val.v.Struct(req))
}

// Booking returns nil or an Errors value listing every violation.
func (val *Validator) Booking(req BookingRequest) error {
	return val.collect(val.v.Struct(req))
}

func (val *Validator) availabilityRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(AvailabilityRequest)
	val.checkSearchDate(sl, req.Date, req.TimeZone)
}

func (val *Validator) bookingRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(BookingRequest)
	val.checkSearchDate(sl, req.Date, req.TimeZone)

	loc := loadLocation(req.TimeZone)
	if req.Time == "" || loc == nil {
		return
	}
	clock, err := time.Parse("15:04", req.Time)
	if err != nil {
		sl.ReportError(req.Time, "time", "Time", "timeformat", "")
		return
	}
	if clock.Minute()%15 != 0 {
		sl.ReportError(req.Time, "time", "Time", "quarterhour", "")
	}
	if req.Date == "" {
		return
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		// Already reported against the date field.
		return
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	if start.Before(val.now()) {
		sl.ReportError(req.Time, "time", "Time", "notpast", "")
	}
}

// checkSearchDate rejects dates before the start of the current day in the
// caller's zone. Today itself is fine.
func (val *Validator) checkSearchDate(sl validator.StructLevel, date, tz string) {
	loc := loadLocation(tz)
	if date == "" || loc == nil {
		return
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		sl.ReportError(date, "date", "Date", "dateformat", "")
		return
	}
	now := val.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		sl.ReportError(date, "date", "Date", "notpast", "")
	}
}

func (val *Validator) collect(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:    fe.Field(),
			Rejected: fmt.Sprintf("%v", fe.Value()),
			Message:  messageFor(fe.Tag()),
		})
	}
	return out
}

func messageFor(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "timezone":
		return "must be a valid IANA time zone"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be positive"
	case "dateformat":
		return "must be a date in YYYY-MM-DD format"
	case "timeformat":
		return "must be a time in HH:MM format"
	case "notpast":
		return "must not be in the past"
	case "quarterhour":
		return "must fall on a 15 minute boundary"
	default:
		return "is invalid"
	}
}

func loadLocation(tz string) *time.Location {
	if tz == "" {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil
	}
	return loc
}
