package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func withID(r *http.Request, id string) *http.Request {
	return mux.SetURLVars(r, map[string]string{"id": id})
}

func withPrincipal(r *http.Request, clinicID string, roles ...string) *http.Request {
	return r.WithContext(auth.ContextWithPrincipal(r.Context(), &auth.Principal{
		UserID:   "user-1",
		Roles:    roles,
		ClinicID: clinicID,
	}))
}

func itemAt(clinicID string) func(ctx context.Context, id string) (*Item, error) {
	return func(ctx context.Context, id string) (*Item, error) {
		return &Item{ID: id, ClinicID: clinicID, Name: "Gauze", Quantity: 12, ReorderLevel: 10}, nil
	}
}

func TestHandlerAdjustStock(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		errType string
	}{
		{"consume", `{"delta":-2,"reason":"used in treatment"}`, http.StatusOK, ""},
		{"zero delta", `{"delta":0,"reason":"noop"}`, http.StatusBadRequest, "validation_error"},
		{"missing reason", `{"delta":5}`, http.StatusBadRequest, "validation_error"},
		{"would go negative", `{"delta":-50,"reason":"used"}`, http.StatusConflict, "insufficient_stock"},
		{"delta beyond int4", `{"delta":3000000000,"reason":"typo"}`, http.StatusBadRequest, "validation_error"},
		{"delta too small", `{"delta":-1000001,"reason":"typo"}`, http.StatusBadRequest, "validation_error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepository{getFunc: itemAt(testClinicID), adjustFunc: adjustFrom(12, 10)}
			h := NewHandler(NewService(repo, nil, nil, zaptest.NewLogger(t)), zaptest.NewLogger(t))

			req := withPrincipal(withID(httptest.NewRequest(http.MethodPost, "/inventory/"+testItemID+"/adjust", bytes.NewBufferString(tc.body)), testItemID), testClinicID, auth.RoleProvider)
			rec := httptest.NewRecorder()
			h.AdjustStock(rec, req)

			require.Equal(t, tc.code, rec.Code, rec.Body.String())
			if tc.errType != "" {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tc.errType, body["error"])
				return
			}
			var resp AdjustResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, 12, resp.PreviousQuantity)
			assert.Equal(t, 10, resp.Item.Quantity)
			assert.True(t, resp.LowStock)
		})
	}
}

func TestHandlerCreateItem(t *testing.T) {
	repo := &mockRepository{
		createFunc: func(ctx context.Context, req CreateItemRequest) (*Item, error) {
			if req.SKU == "DUP" {
				return nil, ErrDuplicateSKU
			}
			return &Item{ID: testItemID, ClinicID: req.ClinicID, Name: req.Name, SKU: req.SKU, Unit: DefaultUnit}, nil
		},
	}
	h := NewHandler(NewService(repo, nil, nil, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	tests := []struct {
		name string
		body string
		code int
	}{
		{"created", `{"clinic_id":"` + testClinicID + `","name":"Gauze","sku":"GZ-1","quantity":40,"reorder_level":10,"expires_at":"2031-05-01"}`, http.StatusCreated},
		{"duplicate sku", `{"clinic_id":"` + testClinicID + `","name":"Gauze","sku":"DUP"}`, http.StatusConflict},
		{"bad expiry", `{"clinic_id":"` + testClinicID + `","name":"Gauze","sku":"GZ-1","expires_at":"01/05/2031"}`, http.StatusBadRequest},
		{"negative quantity", `{"clinic_id":"` + testClinicID + `","name":"Gauze","sku":"GZ-1","quantity":-1}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.CreateItem(rec, withPrincipal(httptest.NewRequest(http.MethodPost, "/inventory", bytes.NewBufferString(tc.body)), testClinicID, auth.RoleClinicStaff))
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestHandlerListLowStock(t *testing.T) {
	repo := &mockRepository{
		lowStockFunc: func(ctx context.Context, clinicID string) ([]Item, error) {
			assert.Equal(t, testClinicID, clinicID)
			return []Item{{ID: testItemID, Quantity: 1, ReorderLevel: 5}}, nil
		},
	}
	h := NewHandler(NewService(repo, nil, nil, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.ListLowStock(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/inventory/low-stock?clinic_id="+testClinicID, nil), testClinicID, auth.RoleClinicStaff))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LowStockResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)

	rec = httptest.NewRecorder()
	h.ListLowStock(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/inventory/low-stock?clinic_id=abc", nil), testClinicID, auth.RoleClinicStaff))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDeleteItem_NotFound(t *testing.T) {
	repo := &mockRepository{getFunc: func(ctx context.Context, id string) (*Item, error) { return nil, ErrItemNotFound }}
	h := NewHandler(NewService(repo, nil, nil, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.DeleteItem(rec, withPrincipal(withID(httptest.NewRequest(http.MethodDelete, "/inventory/"+testItemID, nil), testItemID), testClinicID, auth.RoleClinicStaff))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerInventory_ClinicScope(t *testing.T) {
	const otherClinic = "c0a80101-0000-4000-8000-0000000000ff"
	var writes int
	var listed string
	repo := &mockRepository{
		getFunc: itemAt(testClinicID),
		adjustFunc: func(ctx context.Context, id string, delta int) (*Adjustment, error) {
			writes++
			return adjustFrom(12, 10)(ctx, id, delta)
		},
		deleteFunc: func(ctx context.Context, id string) error {
			writes++
			return nil
		},
		lowStockFunc: func(ctx context.Context, clinicID string) ([]Item, error) {
			listed = clinicID
			return nil, nil
		},
	}
	h := NewHandler(NewService(repo, nil, nil, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	t.Run("adjust another clinic's stock", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withID(httptest.NewRequest(http.MethodPost, "/inventory/"+testItemID+"/adjust", bytes.NewBufferString(`{"delta":-1,"reason":"used"}`)), testItemID)
		h.AdjustStock(rec, withPrincipal(req, otherClinic, auth.RoleProvider))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete another clinic's item", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withID(httptest.NewRequest(http.MethodDelete, "/inventory/"+testItemID, nil), testItemID)
		h.DeleteItem(rec, withPrincipal(req, otherClinic, auth.RoleClinicStaff))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("read another clinic's item", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withID(httptest.NewRequest(http.MethodGet, "/inventory/"+testItemID, nil), testItemID)
		h.GetItem(rec, withPrincipal(req, otherClinic, auth.RoleClinicStaff))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("create for another clinic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := `{"clinic_id":"` + testClinicID + `","name":"Gauze","sku":"GZ-1"}`
		h.CreateItem(rec, withPrincipal(httptest.NewRequest(http.MethodPost, "/inventory", bytes.NewBufferString(body)), otherClinic, auth.RoleClinicStaff))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	assert.Zero(t, writes)

	t.Run("low stock defaults to own clinic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListLowStock(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/inventory/low-stock", nil), testClinicID, auth.RoleProvider))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testClinicID, listed)

		rec = httptest.NewRecorder()
		h.ListLowStock(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/inventory/low-stock?clinic_id="+otherClinic, nil), testClinicID, auth.RoleProvider))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin reads any clinic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListLowStock(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/inventory/low-stock?clinic_id="+otherClinic, nil), "", auth.RoleAdmin))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, otherClinic, listed)
	})
}
