package provider

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

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
	Success  bool      `json:"success"`
	Message  string    `json:"message,omitempty"`
	Provider *Provider `json:"provider,omitempty"`
}

type ListResponse struct {
	Success    bool            `json:"success"`
	Providers  []Provider      `json:"providers"`
	Pagination pagination.Meta `json:"pagination"`
}

type WorkingHoursResponse struct {
	Success bool           `json:"success"`
	Hours   []WorkingHours `json:"hours"`
}

func (h *Handler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req CreateProviderRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	if err := auth.AuthorizeClinic(r.Context(), req.ClinicID); err != nil {
		h.writeError(w, err, "creation_failed")
		return
	}
	p, err := h.service.CreateProvider(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "creation_failed")
		return
	}
	respond.JSON(w, http.StatusCreated, SuccessResponse{Success: true, Message: "Provider created successfully", Provider: p})
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		ClinicID:  q.Get("clinic_id"),
		Specialty: strings.TrimSpace(q.Get("specialty")),
		ServiceID: q.Get("service_id"),
		Search:    strings.TrimSpace(q.Get("search")),
	}
	for name, v := range map[string]string{"clinic_id": filter.ClinicID, "service_id": filter.ServiceID} {
		if v == "" {
			continue
		}
		if _, err := uuid.Parse(v); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_id", name+" must be a valid UUID")
			return
		}
	}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_request", "active must be true or false")
			return
		}
		filter.Active = &active
	}

	page, err := h.service.ListProviders(r.Context(), filter, pagination.ParseParams(r))
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse{Success: true, Providers: page.Items, Pagination: page.Meta})
}

func (h *Handler) GetProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.service.GetProvider(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Provider: p})
}

func (h *Handler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok || !h.authorize(w, r, id) {
		return
	}
	var req UpdateProviderRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	p, err := h.service.UpdateProvider(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Provider updated successfully", Provider: p})
}

func (h *Handler) DeleteProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok || !h.authorize(w, r, id) {
		return
	}
	if err := h.service.DeleteProvider(r.Context(), id); err != nil {
		h.writeError(w, err, "deletion_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Provider deleted successfully"})
}

func (h *Handler) SetServices(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok || !h.authorize(w, r, id) {
		return
	}
	var req SetServicesRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	p, err := h.service.SetServices(r.Context(), id, req.ServiceIDs)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Provider services updated", Provider: p})
}

func (h *Handler) SetWorkingHours(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok || !h.authorize(w, r, id) {
		return
	}
	var req SetWorkingHoursRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	hours, err := h.service.SetWorkingHours(r.Context(), id, req.Hours)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}
	respond.JSON(w, http.StatusOK, WorkingHoursResponse{Success: true, Hours: hours})
}

func (h *Handler) GetWorkingHours(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	hours, err := h.service.GetWorkingHours(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, WorkingHoursResponse{Success: true, Hours: hours})
}

// authorize checks that the caller manages the provider's clinic.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, id string) bool {
	p, err := h.service.GetProvider(r.Context(), id)
	if err == nil {
		err = auth.AuthorizeClinic(r.Context(), p.ClinicID)
	}
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if _, ok := validation.AsError(err); ok {
		respond.Validation(w, err)
		return
	}
	switch {
	case errors.Is(err, ErrProviderNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, auth.ErrClinicForbidden):
		respond.Error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ErrClinicNotFound), errors.Is(err, ErrInvalidService):
		respond.Error(w, http.StatusUnprocessableEntity, "invalid_reference", err.Error())
	case errors.Is(err, ErrProviderInUse):
		respond.Error(w, http.StatusConflict, "provider_in_use", err.Error())
	case errors.Is(err, ErrNoFieldsToUpdate):
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.logger.Error("provider request failed", zap.String("error_type", fallback), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, fallback, "internal server error")
	}
}
