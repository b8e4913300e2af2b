package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tahmid-rahman/openslot/internal/availability"
	"github.com/tahmid-rahman/openslot/internal/hours"
	"github.com/tahmid-rahman/openslot/internal/model"
	"github.com/tahmid-rahman/openslot/internal/validate"
)

type fakeRepo struct {
	intervals  []availability.BookedInterval
	err        error
	employeeID string
	window     model.SearchWindow
}

func (f *fakeRepo) FetchBookedIntervals(_ context.Context, employeeID string, window model.SearchWindow) ([]availability.BookedInterval, error) {
	f.employeeID = employeeID
	f.window = window
	return f.intervals, f.err
}

func staticHours(t *testing.T) hours.Provider {
	t.Helper()
	p, err := hours.NewStaticProvider("UTC", "09:00", "17:00")
	if err != nil {
		t.Fatalf("NewStaticProvider failed: %v", err)
	}
	return p
}

func validRequest() validate.AvailabilityRequest {
	return validate.AvailabilityRequest{
		ServiceID:  "svc-1",
		EmployeeID: "emp-1",
		Date:       "2031-05-20",
		TimeZone:   "UTC",
	}
}

func TestAvailableSlots_HappyPath(t *testing.T) {
	day := time.Date(2031, 5, 20, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		intervals: []availability.BookedInterval{
			{Start: day.Add(12 * time.Hour), Minutes: 15},
		},
	}
	svc := NewAvailability(repo, staticHours(t), validate.New(), 15)

	slots, err := svc.AvailableSlots(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("AvailableSlots failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d: %v", len(slots), slots)
	}
	if repo.employeeID != "emp-1" {
		t.Fatalf("expected fetch for emp-1, got %q", repo.employeeID)
	}
}

func TestAvailableSlots_WindowSpansMinusOneToPlusThreeDays(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewAvailability(repo, staticHours(t), validate.New(), 15)

	if _, err := svc.AvailableSlots(context.Background(), validRequest()); err != nil {
		t.Fatalf("AvailableSlots failed: %v", err)
	}

	wantFrom := time.Date(2031, 5, 19, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2031, 5, 23, 0, 0, 0, 0, time.UTC)
	if !repo.window.From.Equal(wantFrom) {
		t.Fatalf("expected window from %s, got %s", wantFrom, repo.window.From)
	}
	if !repo.window.To.Equal(wantTo) {
		t.Fatalf("expected window to %s, got %s", wantTo, repo.window.To)
	}
}

func TestAvailableSlots_ValidationFailureSkipsFetch(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewAvailability(repo, staticHours(t), validate.New(), 15)

	req := validRequest()
	req.EmployeeID = ""
	req.TimeZone = ""
	_, err := svc.AvailableSlots(context.Background(), req)
	if !validate.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verrs validate.Errors
	if errors.As(err, &verrs); len(verrs) != 2 {
		t.Fatalf("expected 2 violations, got %v", verrs)
	}
	if repo.employeeID != "" {
		t.Fatal("repository must not be called for invalid requests")
	}
}

func TestAvailableSlots_RepositoryErrorPropagatesUnchanged(t *testing.T) {
	dbDown := errors.New("connection refused")
	repo := &fakeRepo{err: dbDown}
	svc := NewAvailability(repo, staticHours(t), validate.New(), 15)

	_, err := svc.AvailableSlots(context.Background(), validRequest())
	if !errors.Is(err, dbDown) {
		t.Fatalf("expected repository error to pass through, got %v", err)
	}
	if validate.IsValidation(err) {
		t.Fatal("repository error must not be classified as validation")
	}
}

func TestAvailableSlots_NoBookingsMeansNoSlots(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewAvailability(repo, staticHours(t), validate.New(), 15)

	slots, err := svc.AvailableSlots(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("AvailableSlots failed: %v", err)
	}
	// A day with no bookings in the window is never visited by the scan, so
	// an empty window yields an empty result rather than full-day slots.
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slots)
	}
}
