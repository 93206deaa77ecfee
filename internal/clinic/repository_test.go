package clinic

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/geo"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clinicCols = []string{
	"id", "name", "description", "address", "city", "phone", "email",
	"latitude", "longitude", "opening_hours", "is_active", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRepository(conn), mock
}

func clinicRow(now time.Time) []driver.Value {
	return []driver.Value{
		testClinicID, "Centrum Kliniek", nil, "Oudegracht 1", "Utrecht", "+31301234567", nil,
		52.0907, 5.1214, nil, true, now, now,
	}
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO clinics`).
		WithArgs(sqlmock.AnyArg(), "Centrum Kliniek", sql.NullString{}, "Oudegracht 1", "Utrecht",
			sql.NullString{String: "+31301234567", Valid: true}, sql.NullString{},
			52.0907, 5.1214, sql.NullString{}, true).
		WillReturnRows(sqlmock.NewRows(clinicCols).AddRow(clinicRow(now)...))

	c, err := repo.Create(context.Background(), CreateClinicRequest{
		Name: " Centrum Kliniek ", Address: "Oudegracht 1", City: "Utrecht", Phone: "+31301234567",
		Latitude: floatPtr(52.0907), Longitude: floatPtr(5.1214),
	})
	require.NoError(t, err)
	assert.Equal(t, testClinicID, c.ID)
	assert.Equal(t, "", c.Description)
	assert.Equal(t, "+31301234567", c.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO clinics`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "clinics_name_city_key"})

	_, err := repo.Create(context.Background(), CreateClinicRequest{
		Name: "x", Address: "y", City: "z", Latitude: floatPtr(1), Longitude: floatPtr(1),
	})
	assert.ErrorIs(t, err, ErrDuplicateClinic)
}

func TestRepositoryGet_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM clinics WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrClinicNotFound)
}

func TestRepositoryList_Filters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	active := true

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clinics WHERE deleted_at IS NULL AND \(name ILIKE \$1 OR city ILIKE \$1\) AND is_active = \$2`).
		WithArgs("%utr%", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`LIMIT \$3 OFFSET \$4`).
		WithArgs("%utr%", true, 20, 0).
		WillReturnRows(sqlmock.NewRows(clinicCols).AddRow(clinicRow(now)...))

	clinics, total, err := repo.List(context.Background(), ListFilter{Search: "utr", Active: &active}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, clinics, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdate_BuildsPartialSet(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE clinics\s+SET name = \$1, is_active = \$2, updated_at = \$3\s+WHERE id = \$4 AND deleted_at IS NULL`).
		WithArgs("Renamed", false, sqlmock.AnyArg(), testClinicID).
		WillReturnRows(sqlmock.NewRows(clinicCols).AddRow(clinicRow(now)...))

	inactive := false
	_, err := repo.Update(context.Background(), testClinicID, UpdateClinicRequest{Name: strPtr("Renamed"), IsActive: &inactive})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdate_NoFields(t *testing.T) {
	repo, _ := newMockRepo(t)

	_, err := repo.Update(context.Background(), testClinicID, UpdateClinicRequest{})
	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestRepositorySoftDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Now()

	mock.ExpectExec(`UPDATE clinics\s+SET deleted_at = \$1`).
		WithArgs(at, testClinicID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE clinics\s+SET deleted_at = \$1`).
		WithArgs(at, testClinicID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SoftDelete(context.Background(), testClinicID, at))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), testClinicID, at), ErrClinicNotFound)
}

func TestRepositoryFindNearby(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	center := geo.Point{Lat: 52.09, Lng: 5.12}
	box := geo.BoundingBox(center, 10)

	cols := append(append([]string{}, clinicCols...), "distance_km")
	mock.ExpectQuery(`ORDER BY distance_km ASC`).
		WithArgs(center.Lat, center.Lng, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng, 10.0, 5).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(append(clinicRow(now), 0.75)...))

	result, err := repo.FindNearby(context.Background(), center, 10, 5)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.InDelta(t, 0.75, result[0].DistanceKm, 1e-9)
	assert.Equal(t, "Centrum Kliniek", result[0].Name)
}

func TestRepositoryFindNearby_AntimeridianUsesFullLongitudeRange(t *testing.T) {
	repo, mock := newMockRepo(t)
	center := geo.Point{Lat: -17.7, Lng: 179.95}
	box := geo.BoundingBox(center, 50)

	cols := append(append([]string{}, clinicCols...), "distance_km")
	mock.ExpectQuery(`ORDER BY distance_km ASC`).
		WithArgs(center.Lat, center.Lng, box.MinLat, box.MaxLat, -180.0, 180.0, 50.0, 20).
		WillReturnRows(sqlmock.NewRows(cols))

	result, err := repo.FindNearby(context.Background(), center, 50, 20)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRepositoryPurgeDeleted(t *testing.T) {
	repo, mock := newMockRepo(t)
	before := time.Now()

	mock.ExpectQuery(`DELETE FROM clinics c`).
		WithArgs(before).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	ids, err := repo.PurgeDeleted(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}
