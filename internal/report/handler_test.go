package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestHandler(t *testing.T, repo *mockRepository) *Handler {
	h := NewHandler(NewService(repo, nil, time.Minute, zaptest.NewLogger(t)), zaptest.NewLogger(t))
	h.now = func() time.Time { return time.Date(2030, 4, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func as(r *http.Request, clinicID string, roles ...string) *http.Request {
	return r.WithContext(auth.ContextWithPrincipal(r.Context(), &auth.Principal{
		UserID:   "user-1",
		Roles:    roles,
		ClinicID: clinicID,
	}))
}

func asAdmin(r *http.Request) *http.Request { return as(r, "", auth.RoleAdmin) }

func TestHandlerAppointmentSummary_Period(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		code     int
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "defaults to last 30 days",
			code:     http.StatusOK,
			wantFrom: time.Date(2030, 3, 2, 12, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2030, 4, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "plain dates",
			query:    "?from=2030-03-01&to=2030-04-01",
			code:     http.StatusOK,
			wantFrom: time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2030, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{name: "bad from", query: "?from=yesterday", code: http.StatusBadRequest},
		{name: "reversed", query: "?from=2030-04-01&to=2030-03-01", code: http.StatusBadRequest},
		{name: "bad clinic", query: "?clinic_id=abc", code: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got Period
			repo := &mockRepository{
				countByStatusFunc: func(_ context.Context, _ string, p Period) (map[string]int, error) {
					got = p
					return map[string]int{"completed": 3, "no_show": 1}, nil
				},
			}
			h := newTestHandler(t, repo)

			rec := httptest.NewRecorder()
			h.AppointmentSummary(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/reports/appointments"+tc.query, nil)))

			require.Equal(t, tc.code, rec.Code, rec.Body.String())
			if tc.code != http.StatusOK {
				return
			}
			assert.True(t, tc.wantFrom.Equal(got.From), "from = %s", got.From)
			assert.True(t, tc.wantTo.Equal(got.To), "to = %s", got.To)

			var body struct {
				Success bool               `json:"success"`
				Report  AppointmentSummary `json:"report"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.True(t, body.Success)
			assert.Equal(t, 4, body.Report.Total)
			assert.Equal(t, 0.75, body.Report.CompletionRate)
		})
	}
}

func TestHandlerTopServices_Limit(t *testing.T) {
	repo := &mockRepository{
		topServicesFunc: func(_ context.Context, _ Period, limit int) ([]ServiceUsage, error) {
			assert.Equal(t, 3, limit)
			return []ServiceUsage{{ServiceID: "s1", Name: "Checkup", Bookings: 9}}, nil
		},
	}
	h := newTestHandler(t, repo)

	rec := httptest.NewRecorder()
	h.TopServices(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/reports/top-services?limit=3", nil)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.TopServices(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/reports/top-services?limit=0", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerInventoryValuation_Error(t *testing.T) {
	h := newTestHandler(t, &mockRepository{})

	rec := httptest.NewRecorder()
	h.InventoryValuation(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/reports/inventory-valuation", nil)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal server error", body["message"])
}

func TestHandlerReports_ClinicScope(t *testing.T) {
	const (
		ownClinic   = "c0a80101-0000-4000-8000-000000000001"
		otherClinic = "c0a80101-0000-4000-8000-0000000000ff"
	)
	var summarised string
	repo := &mockRepository{
		countByStatusFunc: func(_ context.Context, clinicID string, _ Period) (map[string]int, error) {
			summarised = clinicID
			return map[string]int{}, nil
		},
	}
	h := newTestHandler(t, repo)

	rec := httptest.NewRecorder()
	h.AppointmentSummary(rec, as(httptest.NewRequest(http.MethodGet, "/reports/appointments", nil), ownClinic, auth.RoleClinicStaff))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ownClinic, summarised)

	rec = httptest.NewRecorder()
	h.AppointmentSummary(rec, as(httptest.NewRequest(http.MethodGet, "/reports/appointments?clinic_id="+otherClinic, nil), ownClinic, auth.RoleClinicStaff))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.RevenueByClinic(rec, as(httptest.NewRequest(http.MethodGet, "/reports/revenue", nil), ownClinic, auth.RoleClinicStaff))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.TopServices(rec, as(httptest.NewRequest(http.MethodGet, "/reports/top-services", nil), ownClinic, auth.RoleClinicStaff))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
