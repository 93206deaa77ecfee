package inventory

import (
	"errors"
	"net/http"
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
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Item    *Item  `json:"item,omitempty"`
}

type ListResponse struct {
	Success    bool            `json:"success"`
	Items      []Item          `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

type AdjustResponse struct {
	Success          bool  `json:"success"`
	Item             *Item `json:"item"`
	PreviousQuantity int   `json:"previous_quantity"`
	LowStock         bool  `json:"low_stock"`
}

type LowStockResponse struct {
	Success bool   `json:"success"`
	Items   []Item `json:"items"`
	Count   int    `json:"count"`
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	if err := auth.AuthorizeClinic(r.Context(), req.ClinicID); err != nil {
		h.writeError(w, err, "creation_failed")
		return
	}
	item, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "creation_failed")
		return
	}
	respond.JSON(w, http.StatusCreated, SuccessResponse{Success: true, Message: "Inventory item created successfully", Item: item})
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clinicID, ok := optionalUUID(w, q.Get("clinic_id"))
	if !ok {
		return
	}
	if clinicID, ok = h.scope(w, r, clinicID); !ok {
		return
	}
	filter := ListFilter{
		ClinicID: clinicID,
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	page, err := h.service.ListItems(r.Context(), filter, pagination.ParseParams(r))
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, ListResponse{Success: true, Items: page.Items, Pagination: page.Meta})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err == nil {
		err = auth.AuthorizeClinic(r.Context(), item.ClinicID)
	}
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Item: item})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok || !h.authorize(w, r, id) {
		return
	}
	var req UpdateItemRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	item, err := h.service.UpdateItem(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err, "update_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Inventory item updated successfully", Item: item})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok || !h.authorize(w, r, id) {
		return
	}
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		h.writeError(w, err, "deletion_failed")
		return
	}
	respond.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Inventory item deleted successfully"})
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.PathUUID(w, r, "id")
	if !ok || !h.authorize(w, r, id) {
		return
	}
	var req AdjustStockRequest
	if !respond.Decode(w, r, &req) {
		return
	}
	adj, err := h.service.AdjustStock(r.Context(), id, req.Delta, req.Reason)
	if err != nil {
		h.writeError(w, err, "adjustment_failed")
		return
	}
	respond.JSON(w, http.StatusOK, AdjustResponse{
		Success:          true,
		Item:             adj.Item,
		PreviousQuantity: adj.Previous,
		LowStock:         adj.Item.LowStock(),
	})
}

func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := optionalUUID(w, r.URL.Query().Get("clinic_id"))
	if !ok {
		return
	}
	if clinicID, ok = h.scope(w, r, clinicID); !ok {
		return
	}
	items, err := h.service.ListLowStock(r.Context(), clinicID)
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return
	}
	respond.JSON(w, http.StatusOK, LowStockResponse{Success: true, Items: items, Count: len(items)})
}

// authorize checks that the caller manages the item's clinic.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, id string) bool {
	item, err := h.service.GetItem(r.Context(), id)
	if err == nil {
		err = auth.AuthorizeClinic(r.Context(), item.ClinicID)
	}
	if err != nil {
		h.writeError(w, err, "fetch_failed")
		return false
	}
	return true
}

// scope narrows a clinic filter to the caller's own clinic. Stock levels are
// internal, so non-admins never read another clinic's.
func (h *Handler) scope(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	clinicID, scoped := auth.ClinicScope(r.Context())
	if !scoped {
		return requested, true
	}
	if clinicID == "" || (requested != "" && !strings.EqualFold(requested, clinicID)) {
		h.writeError(w, auth.ErrClinicForbidden, "fetch_failed")
		return "", false
	}
	return clinicID, true
}

func optionalUUID(w http.ResponseWriter, v string) (string, bool) {
	if v == "" {
		return "", true
	}
	if _, err := uuid.Parse(v); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_id", "clinic_id must be a valid UUID")
		return "", false
	}
	return v, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if _, ok := validation.AsError(err); ok {
		respond.Validation(w, err)
		return
	}
	switch {
	case errors.Is(err, ErrItemNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, auth.ErrClinicForbidden):
		respond.Error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ErrDuplicateSKU):
		respond.Error(w, http.StatusConflict, "duplicate_sku", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		respond.Error(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, ErrQuantityTooLarge):
		respond.Error(w, http.StatusUnprocessableEntity, "quantity_out_of_range", err.Error())
	case errors.Is(err, ErrClinicNotFound):
		respond.Error(w, http.StatusUnprocessableEntity, "invalid_reference", err.Error())
	case errors.Is(err, ErrNoFieldsToUpdate):
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.logger.Error("inventory request failed", zap.String("error_type", fallback), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, fallback, "internal server error")
	}
}
