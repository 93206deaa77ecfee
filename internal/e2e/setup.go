//go:build integration

package e2e

import (
	"crypto/rsa"
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/appointment"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	httpserver "github.com/WailSalutem-Health-Care/clinic-service/internal/http"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/telemetry"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/testutil"
	"go.uber.org/zap/zaptest"
)

// TestServer represents a complete E2E test environment
type TestServer struct {
	Server        *httptest.Server
	DB            *sql.DB
	MockPublisher *testutil.MockPublisher
	PrivateKey    *rsa.PrivateKey
}

// SetupE2ETest starts the full router against the test database with an
// in-memory publisher, memory cache and no rate limit. Working hours are
// interpreted in UTC.
func SetupE2ETest(t *testing.T) *TestServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mockPublisher := testutil.NewMockPublisher()

	perms, err := auth.LoadPermissions("../../permissions.yml")
	if err != nil {
		t.Fatalf("Failed to load permissions: %v", err)
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatalf("Failed to init metrics: %v", err)
	}

	verifier, privateKey := testutil.CreateTestVerifier(t)

	router := httpserver.SetupRouter(httpserver.Dependencies{
		DB:          db,
		Verifier:    verifier,
		Permissions: perms,
		Publisher:   mockPublisher,
		CacheTTL:    time.Minute,
		Rules: appointment.Rules{
			SlotStep:     15 * time.Minute,
			MinLeadTime:  time.Hour,
			CancelCutoff: 24 * time.Hour,
			Location:     time.UTC,
		},
		Metrics:     metrics,
		Logger:      zaptest.NewLogger(t),
		ServiceName: "clinic-service-e2e",
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:        server,
		DB:            db,
		MockPublisher: mockPublisher,
		PrivateKey:    privateKey,
	}
}

func (ts *TestServer) AdminClient(t *testing.T) *testutil.HTTPTestClient {
	t.Helper()
	return testutil.NewHTTPTestClient(ts.Server.URL, testutil.GenerateAdminToken(t, ts.PrivateKey))
}

func (ts *TestServer) StaffClient(t *testing.T, clinicID string) *testutil.HTTPTestClient {
	t.Helper()
	return testutil.NewHTTPTestClient(ts.Server.URL, testutil.GenerateStaffToken(t, ts.PrivateKey, clinicID))
}

func (ts *TestServer) PatientClient(t *testing.T, patientID string) *testutil.HTTPTestClient {
	t.Helper()
	return testutil.NewHTTPTestClient(ts.Server.URL, testutil.GeneratePatientToken(t, ts.PrivateKey, patientID))
}
