package navigation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/geo"
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

type RouteResponse struct {
	Success bool   `json:"success"`
	Route   *Route `json:"route"`
}

func point(w http.ResponseWriter, r *http.Request, latKey, lngKey string) (geo.Point, bool) {
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get(latKey), 64)
	lng, err2 := strconv.ParseFloat(q.Get(lngKey), 64)
	if err1 != nil || err2 != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", latKey+" and "+lngKey+" are required numbers")
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lng: lng}, true
}

// Route handles GET /navigation/route
func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	from, ok := point(w, r, "from_lat", "from_lng")
	if !ok {
		return
	}
	to, ok := point(w, r, "to_lat", "to_lng")
	if !ok {
		return
	}
	mode, err := ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	route, err := h.service.Route(r.Context(), from, to, mode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, RouteResponse{Success: true, Route: route})
}

// RouteToClinic handles GET /clinics/{id}/route
func (h *Handler) RouteToClinic(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	from, ok := point(w, r, "lat", "lng")
	if !ok {
		return
	}
	mode, err := ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	route, err := h.service.RouteToClinic(r.Context(), from, id, mode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, RouteResponse{Success: true, Route: route})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidMode), errors.Is(err, ErrInvalidPoint):
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, clinic.ErrClinicNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
	default:
		h.logger.Error("route failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "route_failed", "internal server error")
	}
}
