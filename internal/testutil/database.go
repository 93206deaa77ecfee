package testutil

import (
	"database/sql"
	"os"
	"testing"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/db"
	_ "github.com/lib/pq"
	"go.uber.org/zap/zaptest"
)

// SetupTestDB connects to TEST_DATABASE_URL and applies migrations. Tests
// are skipped when the variable is unset.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connStr := os.Getenv("TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := conn.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	migrator, err := db.NewMigrator(conn, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to build migrator: %v", err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		CleanupTestDB(t, conn)
		conn.Close()
	})
	return conn
}

// CleanupTestDB empties every table the service owns.
func CleanupTestDB(t *testing.T, conn *sql.DB) {
	t.Helper()

	_, err := conn.Exec(`TRUNCATE TABLE appointments, working_hours, provider_services,
		providers, services, inventory_items, profiles, clinics CASCADE`)
	if err != nil {
		t.Logf("Warning: Failed to clean up test data: %v", err)
	}
}

// CreateTestClinic inserts an active clinic and returns its id.
func CreateTestClinic(t *testing.T, conn *sql.DB, name string, lat, lng float64) string {
	t.Helper()

	var id string
	err := conn.QueryRow(`
		INSERT INTO clinics (id, name, address, city, latitude, longitude, is_active)
		VALUES (gen_random_uuid(), $1, 'Teststraat 1', 'Utrecht', $2, $3, TRUE)
		RETURNING id
	`, name, lat, lng).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test clinic: %v", err)
	}
	return id
}
