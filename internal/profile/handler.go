package profile

import (
	"errors"
	"net/http"
	"strings"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/respond"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/validation"
	"github.com/gorilla/mux"
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
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
}

// MeResponse pairs the caller's account with their profile, which is null
// until the first upsert.
type MeResponse struct {
	Success bool     `json:"success"`
	User    User     `json:"user"`
	Profile *Profile `json:"profile"`
}

type ListResponse struct {
	Success    bool            `json:"success"`
	Profiles   []Profile       `json:"profiles"`
	Pagination pagination.Meta `json:"pagination"`
}

func userOf(p *auth.Principal) User {
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	return User{ID: p.UserID, Email: p.Email, Roles: roles, ClinicID: p.ClinicID}
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	p, err := h.service.GetMyProfile(r.Context(), principal)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, MeResponse{Success: true, User: userOf(principal), Profile: p})
}

func (h *Handler) UpsertMyProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	var req UpsertProfileRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	p, created, err := h.service.UpsertMyProfile(r.Context(), principal, req)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}
	if created {
		respond.JSON(w, http.StatusCreated, SuccessResponse{Success: true, Message: "Profile created successfully", Profile: p})
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Profile updated successfully", Profile: p})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respond.Error(w, http.StatusBadRequest, "invalid_id", "profile id is required")
		return
	}
	p, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Profile: p})
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}
	page, err := h.service.ListProfiles(r.Context(), filter, pagination.ParseParams(r))
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse{Success: true, Profiles: page.Items, Pagination: page.Meta})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if _, ok := validation.AsError(err); ok {
		respond.Validation(w, err)
		return
	}
	switch {
	case errors.Is(err, ErrProfileNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
	default:
		h.logger.Error("profile request failed", zap.String("error_type", fallback), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, fallback, "internal server error")
	}
}
