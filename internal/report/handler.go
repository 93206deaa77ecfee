package report

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/respond"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPeriod is used when from/to are omitted.
const DefaultPeriod = 30 * 24 * time.Hour

type Handler struct {
	service ServiceInterface
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(service ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger, now: time.Now}
}

type Response struct {
	Success bool        `json:"success"`
	Report  interface{} `json:"report"`
}

// parseTime accepts RFC 3339 timestamps and plain dates (UTC midnight).
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (h *Handler) period(w http.ResponseWriter, r *http.Request) (Period, bool) {
	q := r.URL.Query()
	p := Period{To: h.now().UTC()}
	if raw := q.Get("to"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_request", "to must be a date or RFC 3339 timestamp")
			return Period{}, false
		}
		p.To = t
	}
	p.From = p.To.Add(-DefaultPeriod)
	if raw := q.Get("from"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_request", "from must be a date or RFC 3339 timestamp")
			return Period{}, false
		}
		p.From = t
	}
	return p, true
}

// clinicParam reads the optional clinic_id filter. Non-admins always report
// on their own clinic.
func clinicParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("clinic_id")
	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_id", "clinic_id must be a valid UUID")
			return "", false
		}
	}
	scope, scoped := auth.ClinicScope(r.Context())
	if !scoped {
		return id, true
	}
	if scope == "" || (id != "" && !strings.EqualFold(id, scope)) {
		respond.Error(w, http.StatusForbidden, "forbidden", auth.ErrClinicForbidden.Error())
		return "", false
	}
	return scope, true
}

// crossClinic admits only callers allowed to compare clinics.
func crossClinic(w http.ResponseWriter, r *http.Request) bool {
	if _, scoped := auth.ClinicScope(r.Context()); scoped {
		respond.Error(w, http.StatusForbidden, "forbidden", "cross-clinic reports are limited to administrators")
		return false
	}
	return true
}

func (h *Handler) AppointmentSummary(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicParam(w, r)
	if !ok {
		return
	}
	p, ok := h.period(w, r)
	if !ok {
		return
	}
	rep, err := h.service.AppointmentSummary(r.Context(), clinicID, p)
	h.write(w, rep, err)
}

func (h *Handler) RevenueByClinic(w http.ResponseWriter, r *http.Request) {
	if !crossClinic(w, r) {
		return
	}
	p, ok := h.period(w, r)
	if !ok {
		return
	}
	rep, err := h.service.RevenueByClinic(r.Context(), p)
	h.write(w, rep, err)
}

func (h *Handler) TopServices(w http.ResponseWriter, r *http.Request) {
	if !crossClinic(w, r) {
		return
	}
	p, ok := h.period(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.Error(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}
	rep, err := h.service.TopServices(r.Context(), p, limit)
	h.write(w, rep, err)
}

func (h *Handler) InventoryValuation(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := clinicParam(w, r)
	if !ok {
		return
	}
	rep, err := h.service.InventoryValuation(r.Context(), clinicID)
	h.write(w, rep, err)
}

func (h *Handler) write(w http.ResponseWriter, rep interface{}, err error) {
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, Response{Success: true, Report: rep})
	case errors.Is(err, ErrInvalidPeriod):
		respond.Error(w, http.StatusBadRequest, "invalid_period", err.Error())
	default:
		h.logger.Error("report failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "report_failed", "internal server error")
	}
}
