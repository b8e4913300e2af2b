package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tahmid-rahman/openslot/internal/model"
	"github.com/tahmid-rahman/openslot/internal/outbox"
	"github.com/tahmid-rahman/openslot/internal/service"
	"github.com/tahmid-rahman/openslot/internal/storage"
	"github.com/tahmid-rahman/openslot/internal/validate"
)

type BookingHandler struct {
	availability *service.Availability
	repo         *storage.BookingRepository
	outboxRepo   *outbox.Repository
	validator    *validate.Validator
	logger       *slog.Logger
}

func NewBookingHandler(availability *service.Availability, repo *storage.BookingRepository, outboxRepo *outbox.Repository, validator *validate.Validator, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		availability: availability,
		repo:         repo,
		outboxRepo:   outboxRepo,
		validator:    validator,
		logger:       logger,
	}
}

type slotItem struct {
	Start         string `json:"start"`
	LengthMinutes int    `json:"length_minutes"`
}

type createBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
}

type cancelBookingRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type cancelBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
}

type listAppointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	EmployeeID    string `json:"employee_id"`
	ServiceID     string `json:"service_id"`
	Start         string `json:"start"`
	LengthMinutes int    `json:"length_minutes"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// Availability serves the public availability query: the open slots for an
// employee around the requested date, chronologically ordered.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	req := validate.AvailabilityRequest{
		ServiceID:  strings.TrimSpace(q.Get("service_id")),
		EmployeeID: strings.TrimSpace(q.Get("employee_id")),
		Date:       strings.TrimSpace(q.Get("date")),
		TimeZone:   strings.TrimSpace(q.Get("tz")),
	}

	slots, err := h.availability.AvailableSlots(r.Context(), req)
	if err != nil {
		if validate.IsValidation(err) {
			h.writeValidationErrors(w, err)
			return
		}
		h.logger.Error("availability query failed", "err", err, "employee_id", req.EmployeeID)
		http.Error(w, "failed to compute availability", http.StatusInternalServerError)
		return
	}

	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			Start:         s.Start.Format(time.RFC3339),
			LengthMinutes: s.Minutes,
		})
	}
	h.writeJSON(w, http.StatusOK, items)
}

// Create commits a booking. The storage layer's overlap exclusion constraint
// is the final word on races against concurrent bookings; a violation comes
// back as 409.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req validate.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)

	if err := h.validator.Booking(req); err != nil {
		if validate.IsValidation(err) {
			h.writeValidationErrors(w, err)
			return
		}
		http.Error(w, "validation failed", http.StatusInternalServerError)
		return
	}

	startTime, err := req.StartTime()
	if err != nil {
		http.Error(w, "invalid start time", http.StatusBadRequest)
		return
	}

	appt := newAppointment(req, startTime)

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		h.logger.Error("appointment insert failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"service_id":     appt.ServiceID,
		"employee_id":    appt.EmployeeID,
		"customer_email": appt.CustomerEmail,
		"customer_phone": appt.CustomerPhone,
		"start":          appt.StartTime.UTC().Format(time.RFC3339),
		"length_minutes": appt.Minutes,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     "booking.appointment.booked.v1",
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, createBookingResponse{AppointmentID: id})
}

func newAppointment(req validate.BookingRequest, start time.Time) *model.Appointment {
	return &model.Appointment{
		ServiceID:     req.ServiceID,
		EmployeeID:    req.EmployeeID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		StartTime:     start,
		Minutes:       req.DurationMinutes,
		Status:        "booked",
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	if appt.Status == "cancelled" && appt.CancelledAt != nil {
		h.writeJSON(w, http.StatusOK, cancelBookingResponse{
			AppointmentID: appt.ID,
			Status:        "cancelled",
			CancelledAt:   appt.CancelledAt.UTC().Format(time.RFC3339),
		})
		return
	}
	if appt.Status != "booked" {
		http.Error(w, "appointment cannot be cancelled", http.StatusConflict)
		return
	}

	cancelledAt, err := h.repo.CancelAppointment(ctx, tx, appt.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	cancelPayload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"service_id":     appt.ServiceID,
		"employee_id":    appt.EmployeeID,
		"start":          appt.StartTime.UTC().Format(time.RFC3339),
		"length_minutes": appt.Minutes,
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         req.Reason,
	})
	if err != nil {
		http.Error(w, "failed to build cancellation event", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "booking.appointment.cancelled.v1",
		Payload:       cancelPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, cancelBookingResponse{
		AppointmentID: appt.ID,
		Status:        "cancelled",
		CancelledAt:   cancelledAt.UTC().Format(time.RFC3339),
	})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	employeeID := strings.TrimSpace(r.URL.Query().Get("employee_id"))
	if employeeID == "" {
		http.Error(w, "employee_id required", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	appts, err := h.repo.ListByEmployee(r.Context(), employeeID, limit)
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]listAppointmentItem, 0, len(appts))
	for _, appt := range appts {
		item := listAppointmentItem{
			AppointmentID: appt.ID,
			EmployeeID:    appt.EmployeeID,
			ServiceID:     appt.ServiceID,
			Start:         appt.StartTime.UTC().Format(time.RFC3339),
			LengthMinutes: appt.Minutes,
			Status:        appt.Status,
			CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if appt.CancelledAt != nil {
			item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) writeValidationErrors(w http.ResponseWriter, err error) {
	var verrs validate.Errors
	if !errors.As(err, &verrs) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verrs})
}

func (h *BookingHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
