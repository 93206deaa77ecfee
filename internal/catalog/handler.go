package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/respond"
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
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Service *MedicalService `json:"service,omitempty"`
}

type ListResponse struct {
	Success    bool             `json:"success"`
	Services   []MedicalService `json:"services"`
	Pagination pagination.Meta  `json:"pagination"`
}

type CategoriesResponse struct {
	Success    bool       `json:"success"`
	Categories []Category `json:"categories"`
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	if err := auth.AuthorizeClinic(r.Context(), req.ClinicID); err != nil {
		h.writeError(w, err, "creation_failed")
		return
	}

	svc, err := h.service.CreateService(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "creation_failed")
		return
	}
	respond.JSON(w, http.StatusCreated, SuccessResponse{Success: true, Message: "Service created successfully", Service: svc})
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		ClinicID: q.Get("clinic_id"),
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if filter.ClinicID != "" {
		if _, err := uuid.Parse(filter.ClinicID); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_id", "clinic_id must be a valid UUID")
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

	page, err := h.service.ListServices(r.Context(), filter, pagination.ParseParams(r))
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse{Success: true, Services: page.Items, Pagination: page.Meta})
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	svc, err := h.service.GetService(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Service: svc})
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok || !h.authorize(w, r, id) {
		return
	}
	var req UpdateServiceRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	svc, err := h.service.UpdateService(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Service updated successfully", Service: svc})
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok || !h.authorize(w, r, id) {
		return
	}
	if err := h.service.DeleteService(r.Context(), id); err != nil {
		h.writeError(w, err, "deletion_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Service deleted successfully"})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	clinicID := r.URL.Query().Get("clinic_id")
	if clinicID != "" {
		if _, err := uuid.Parse(clinicID); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid_id", "clinic_id must be a valid UUID")
			return
		}
	}
	categories, err := h.service.ListCategories(r.Context(), clinicID)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, CategoriesResponse{Success: true, Categories: categories})
}

// authorize checks that the caller manages the clinic offering the service.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, id string) bool {
	svc, err := h.service.GetService(r.Context(), id)
	if err == nil {
		err = auth.AuthorizeClinic(r.Context(), svc.ClinicID)
	}
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrServiceNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, auth.ErrClinicForbidden):
		respond.Error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ErrClinicNotFound):
		respond.Error(w, http.StatusUnprocessableEntity, "invalid_reference", err.Error())
	case errors.Is(err, ErrDuplicateService):
		respond.Error(w, http.StatusConflict, "duplicate_service", err.Error())
	case errors.Is(err, ErrNoFieldsToUpdate):
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.logger.Error("service catalog request failed", zap.String("error_type", fallback), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, fallback, "internal server error")
	}
}
