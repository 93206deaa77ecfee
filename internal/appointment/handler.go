package appointment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/respond"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service ServiceInterface
	logger  *zap.Logger
}

func NewHandler(service ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

type SuccessResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message,omitempty"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

type ListResponse struct {
	Success      bool            `json:"success"`
	Appointments []Appointment   `json:"appointments"`
	Pagination   pagination.Meta `json:"pagination"`
}

type AvailabilityResponse struct {
	Success    bool   `json:"success"`
	ProviderID string `json:"provider_id"`
	ServiceID  string `json:"service_id"`
	Date       string `json:"date"`
	Slots      []Slot `json:"slots"`
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return Actor{}, false
	}
	return ActorFrom(p), true
}

func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req BookRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	a, err := h.service.Book(r.Context(), actor, req)
	if err != nil {
		h.writeError(w, err, "booking_failed")
		return
	}
	respond.JSON(w, http.StatusCreated, SuccessResponse{Success: true, Message: "Appointment booked successfully", Appointment: a})
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := ListFilter{
		PatientID:  q.Get("patient_id"),
		ProviderID: q.Get("provider_id"),
		ClinicID:   q.Get("clinic_id"),
		Status:     Status(q.Get("status")),
	}
	for name, v := range map[string]string{"provider_id": filter.ProviderID, "clinic_id": filter.ClinicID} {
		if v == "" {
			continue
		}
		if _, err := uuid.Parse(v); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_id", name+" must be a valid UUID")
			return
		}
	}
	if filter.Status != "" && !filter.Status.Valid() {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "unknown status "+string(filter.Status))
		return
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_request", name+" must be an RFC 3339 timestamp")
			return
		}
		*dst = &t
	}

	page, err := h.service.List(r.Context(), actor, filter, pagination.ParseParams(r))
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse{Success: true, Appointments: page.Items, Pagination: page.Meta})
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Appointment: a})
}

func (h *Handler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Appointment confirmed", h.service.Confirm)
}

func (h *Handler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Appointment completed", h.service.Complete)
}

func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Appointment marked as no-show", h.service.MarkNoShow)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, message string, fn func(context.Context, Actor, string) (*Appointment, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := fn(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: message, Appointment: a})
}

func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if r.ContentLength != 0 && !respond.Decode(w, r, &req) {
		return
	}
	a, err := h.service.Cancel(r.Context(), actor, id, req.Reason)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Appointment cancelled", Appointment: a})
}

func (h *Handler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	var req RescheduleRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	a, err := h.service.Reschedule(r.Context(), actor, id, req.StartsAt)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}
	respond.JSON(w, http.StatusCreated, SuccessResponse{Success: true, Message: "Appointment rescheduled", Appointment: a})
}

// Availability serves GET /providers/{id}/availability?service_id&date.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	providerID, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	q := r.URL.Query()
	serviceID := q.Get("service_id")
	if _, err := uuid.Parse(serviceID); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_id", "service_id must be a valid UUID")
		return
	}
	date := q.Get("date")

	slots, err := h.service.Availability(r.Context(), providerID, serviceID, date)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, AvailabilityResponse{
		Success:    true,
		ProviderID: providerID,
		ServiceID:  serviceID,
		Date:       date,
		Slots:      slots,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if _, ok := validation.AsError(err); ok {
		respond.Validation(w, err)
		return
	}
	switch {
	case errors.Is(err, ErrAppointmentNotFound), errors.Is(err, ErrProviderNotFound), errors.Is(err, ErrServiceNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrPatientOverlap):
		respond.Error(w, http.StatusConflict, "slot_unavailable", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, ErrProviderInactive), errors.Is(err, ErrServiceNotOffered),
		errors.Is(err, ErrOutsideWorkingHours), errors.Is(err, ErrTooSoon), errors.Is(err, ErrMisaligned),
		errors.Is(err, ErrNotStarted), errors.Is(err, ErrAlreadyStarted):
		respond.Error(w, http.StatusUnprocessableEntity, "booking_rule_violation", err.Error())
	case errors.Is(err, ErrCancelCutoff):
		respond.Error(w, http.StatusForbidden, "cancel_cutoff", err.Error())
	case errors.Is(err, ErrRateLimited):
		respond.Error(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.Is(err, ErrInvalidDate):
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.logger.Error("appointment request failed", zap.String("error_type", fallback), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, fallback, "internal server error")
	}
}
