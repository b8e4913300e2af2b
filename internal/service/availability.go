// Package service orchestrates the availability query: validate the request,
// fetch the booked intervals for the window, run the gap scan.
package service

import (
	"context"
	"time"

	"github.com/tahmid-rahman/openslot/internal/availability"
	"github.com/tahmid-rahman/openslot/internal/hours"
	"github.com/tahmid-rahman/openslot/internal/model"
	"github.com/tahmid-rahman/openslot/internal/validate"
)

// BookingRepository fetches the committed bookings whose start falls in the
// half-open search window, in any order, cancelled bookings excluded.
type BookingRepository interface {
	FetchBookedIntervals(ctx context.Context, employeeID string, window model.SearchWindow) ([]availability.BookedInterval, error)
}

type Availability struct {
	repo           BookingRepository
	hours          hours.Provider
	validator      *validate.Validator
	minSlotMinutes int
}

func NewAvailability(repo BookingRepository, hoursProvider hours.Provider, validator *validate.Validator, minSlotMinutes int) *Availability {
	if minSlotMinutes <= 0 {
		minSlotMinutes = availability.DefaultMinimumSlotMinutes
	}
	return &Availability{
		repo:           repo,
		hours:          hoursProvider,
		validator:      validator,
		minSlotMinutes: minSlotMinutes,
	}
}

// AvailableSlots returns the open slots for the requested employee around the
// requested date, ordered chronologically. Malformed requests fail with a
// validate.Errors value; repository failures propagate unchanged.
//
// Every call recomputes from current booking state. No staleness guarantee is
// made across calls; overlap protection for concurrent commits lives at the
// storage layer, not here.
func (s *Availability) AvailableSlots(ctx context.Context, req validate.AvailabilityRequest) ([]availability.Slot, error) {
	if err := s.validator.Availability(req); err != nil {
		return nil, err
	}

	window, err := searchWindow(req)
	if err != nil {
		return nil, err
	}

	businessHours, err := s.hours.BusinessHours(ctx)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.FetchBookedIntervals(ctx, req.EmployeeID, window)
	if err != nil {
		return nil, err
	}

	return availability.Scan(businessHours, booked, s.minSlotMinutes), nil
}

// searchWindow spans one day before through three days after the requested
// date, in the caller's zone.
func searchWindow(req validate.AvailabilityRequest) (model.SearchWindow, error) {
	loc, err := time.LoadLocation(req.TimeZone)
	if err != nil {
		return model.SearchWindow{}, err
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		return model.SearchWindow{}, err
	}
	return model.SearchWindow{
		From: day.AddDate(0, 0, -1),
		To:   day.AddDate(0, 0, 3),
	}, nil
}
