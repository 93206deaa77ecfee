package provider

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var providerCols = []string{
	"id", "clinic_id", "full_name", "specialty", "email", "phone", "bio",
	"is_active", "created_at", "updated_at", "service_ids",
}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRepository(conn), mock
}

func TestRepositoryGet_ScansServiceIDs(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM providers p WHERE p.id = \$1 AND p.deleted_at IS NULL`).
		WithArgs(testProviderID).
		WillReturnRows(sqlmock.NewRows(providerCols).AddRow(
			testProviderID, testClinicID, "Dr. A", "GP", nil, nil, nil, true, now, now, "{s1,s2}"))

	p, err := repo.Get(context.Background(), testProviderID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, p.ServiceIDs)
}

func TestRepositoryGet_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM providers p`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), testProviderID)
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestRepositoryReplaceServices_RejectsForeignService(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT clinic_id FROM providers WHERE id = \$1 AND deleted_at IS NULL FOR UPDATE`).
		WithArgs(testProviderID).
		WillReturnRows(sqlmock.NewRows([]string{"clinic_id"}).AddRow(testClinicID))
	mock.ExpectExec(`DELETE FROM provider_services WHERE provider_id = \$1`).
		WithArgs(testProviderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO provider_services`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := repo.ReplaceServices(context.Background(), testProviderID, []string{"s1", "S1", "s2"})
	assert.ErrorIs(t, err, ErrInvalidService)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryReplaceServices_UnknownProvider(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.ReplaceServices(context.Background(), testProviderID, nil), ErrProviderNotFound)
}

func TestRepositoryReplaceWorkingHours(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(testProviderID).
		WillReturnRows(sqlmock.NewRows([]string{"clinic_id"}).AddRow(testClinicID))
	mock.ExpectExec(`DELETE FROM working_hours WHERE provider_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO working_hours`).
		WithArgs(sqlmock.AnyArg(), testProviderID, 1, "09:00", "12:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO working_hours`).
		WithArgs(sqlmock.AnyArg(), testProviderID, 1, "13:00", "17:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	clinicID, err := repo.ReplaceWorkingHours(context.Background(), testProviderID, []WorkingHours{
		{Weekday: 1, StartTime: "09:00", EndTime: "12:00"},
		{Weekday: 1, StartTime: "13:00", EndTime: "17:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, testClinicID, clinicID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_UnknownClinic(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO providers`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), CreateProviderRequest{ClinicID: testClinicID, FullName: "x", Specialty: "y"})
	assert.ErrorIs(t, err, ErrClinicNotFound)
}
