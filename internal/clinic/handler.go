package clinic

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/respond"
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
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Clinic  *Clinic `json:"clinic,omitempty"`
}

type ListResponse struct {
	Success    bool            `json:"success"`
	Clinics    []Clinic        `json:"clinics"`
	Pagination pagination.Meta `json:"pagination"`
}

type NearbyResponse struct {
	Success bool           `json:"success"`
	Clinics []NearbyClinic `json:"clinics"`
	Count   int            `json:"count"`
}

func (h *Handler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var req CreateClinicRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.service.CreateClinic(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "creation_failed")
		return
	}

	respond.JSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Clinic created successfully",
		Clinic:  c,
	})
}

func (h *Handler) ListClinics(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_request", "active must be true or false")
			return
		}
		filter.Active = &active
	}

	page, err := h.service.ListClinics(r.Context(), filter, pagination.ParseParams(r))
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}

	respond.JSON(w, http.StatusOK, ListResponse{
		Success:    true,
		Clinics:    page.Items,
		Pagination: page.Meta,
	})
}

func (h *Handler) GetClinic(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.service.GetClinic(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}

	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Clinic: c})
}

func (h *Handler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := auth.AuthorizeClinic(r.Context(), id); err != nil {
		h.writeError(w, err, "forbidden")
		return
	}

	var req UpdateClinicRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.service.UpdateClinic(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}

	respond.JSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Clinic updated successfully",
		Clinic:  c,
	})
}

func (h *Handler) DeleteClinic(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := auth.AuthorizeClinic(r.Context(), id); err != nil {
		h.writeError(w, err, "forbidden")
		return
	}

	if err := h.service.DeleteClinic(r.Context(), id); err != nil {
		h.writeError(w, err, "deletion_failed")
		return
	}

	respond.JSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Clinic deleted successfully",
	})
}

// FindNearby handles GET /clinics/nearby?lat=&lng=&radius_km=&limit=
func (h *Handler) FindNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		respond.Error(w, http.StatusBadRequest, "validation_error", "lat and lng are required numbers")
		return
	}

	query := NearbyQuery{Lat: lat, Lng: lng}
	if raw := q.Get("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			respond.Error(w, http.StatusBadRequest, "validation_error", "radius_km must be a positive number")
			return
		}
		query.RadiusKm = radius
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respond.Error(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		query.Limit = limit
	}

	clinics, err := h.service.FindNearby(r.Context(), query)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}

	respond.JSON(w, http.StatusOK, NearbyResponse{Success: true, Clinics: clinics, Count: len(clinics)})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrClinicNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, auth.ErrClinicForbidden):
		respond.Error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ErrDuplicateClinic):
		respond.Error(w, http.StatusConflict, "duplicate_clinic", err.Error())
	case errors.Is(err, ErrClinicInUse):
		respond.Error(w, http.StatusConflict, "clinic_in_use", err.Error())
	case errors.Is(err, ErrNoFieldsToUpdate):
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrInvalidLocation):
		respond.Error(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		h.logger.Error("clinic request failed", zap.String("error_type", fallback), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, fallback, "internal server error")
	}
}
