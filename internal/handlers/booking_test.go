package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tahmid-rahman/openslot/internal/availability"
	"github.com/tahmid-rahman/openslot/internal/hours"
	"github.com/tahmid-rahman/openslot/internal/model"
	"github.com/tahmid-rahman/openslot/internal/service"
	"github.com/tahmid-rahman/openslot/internal/validate"
)

type stubRepo struct {
	intervals []availability.BookedInterval
}

func (s *stubRepo) FetchBookedIntervals(_ context.Context, _ string, _ model.SearchWindow) ([]availability.BookedInterval, error) {
	return s.intervals, nil
}

func newTestHandler(t *testing.T, repo service.BookingRepository) *BookingHandler {
	t.Helper()
	hoursProvider, err := hours.NewStaticProvider("UTC", "09:00", "17:00")
	if err != nil {
		t.Fatalf("NewStaticProvider failed: %v", err)
	}
	validator := validate.New()
	svc := service.NewAvailability(repo, hoursProvider, validator, 15)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBookingHandler(svc, nil, nil, validator, logger)
}

func TestAvailability_ReturnsOrderedSlots(t *testing.T) {
	day := time.Date(2031, 5, 20, 0, 0, 0, 0, time.UTC)
	h := newTestHandler(t, &stubRepo{
		intervals: []availability.BookedInterval{
			{Start: day.Add(12 * time.Hour), Minutes: 15},
		},
	})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/public/availability?service_id=svc-1&employee_id=emp-1&date=2031-05-20&tz=UTC", nil)
	rw := httptest.NewRecorder()
	h.Availability(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var items []slotItem
	if err := json.Unmarshal(rw.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 slots, got %d: %v", len(items), items)
	}
	if items[0].Start != "2031-05-20T09:00:00Z" || items[0].LengthMinutes != 180 {
		t.Fatalf("unexpected first slot: %+v", items[0])
	}
	if items[1].Start != "2031-05-20T12:15:00Z" || items[1].LengthMinutes != 285 {
		t.Fatalf("unexpected second slot: %+v", items[1])
	}
}

func TestAvailability_EmptyWindow(t *testing.T) {
	h := newTestHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/public/availability?service_id=svc-1&employee_id=emp-1&date=2031-05-20&tz=UTC", nil)
	rw := httptest.NewRecorder()
	h.Availability(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if body := rw.Body.String(); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestAvailability_ValidationErrorsListEveryField(t *testing.T) {
	h := newTestHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/availability", nil)
	rw := httptest.NewRecorder()
	h.Availability(rw, req)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
	var resp struct {
		Errors []validate.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if len(resp.Errors) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(resp.Errors), resp.Errors)
	}
}

func TestAvailability_RejectsNonGet(t *testing.T) {
	h := newTestHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/availability", nil)
	rw := httptest.NewRecorder()
	h.Availability(rw, req)

	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rw.Code)
	}
}
