package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceCols = []string{
	"id", "clinic_id", "name", "category", "description", "duration_minutes",
	"price_cents", "currency", "is_active", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRepository(conn), mock
}

func TestRepositoryCreate_DefaultsAndNormalization(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	price := int64(4500)

	mock.ExpectQuery(`INSERT INTO services .* FROM clinics c\s+WHERE c.id = \$2 AND c.deleted_at IS NULL`).
		WithArgs(sqlmock.AnyArg(), testClinicID, "Consult", "general", sql.NullString{}, 30, int64(4500), "EUR", true).
		WillReturnRows(sqlmock.NewRows(serviceCols).AddRow(
			"5e0a0000-0000-4000-8000-000000000001", testClinicID, "Consult", "general", nil, 30, 4500, "EUR", true, now, now))

	s, err := repo.Create(context.Background(), CreateServiceRequest{
		ClinicID: testClinicID, Name: "Consult", Category: " General ", DurationMinutes: 30, PriceCents: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", s.Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_MissingClinic(t *testing.T) {
	repo, mock := newMockRepo(t)
	price := int64(1)

	mock.ExpectQuery(`INSERT INTO services`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Create(context.Background(), CreateServiceRequest{ClinicID: testClinicID, Name: "x", Category: "y", DurationMinutes: 5, PriceCents: &price})
	assert.ErrorIs(t, err, ErrClinicNotFound)
}

func TestRepositoryCreate_Duplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	price := int64(1)

	mock.ExpectQuery(`INSERT INTO services`).WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), CreateServiceRequest{ClinicID: testClinicID, Name: "x", Category: "y", DurationMinutes: 5, PriceCents: &price})
	assert.ErrorIs(t, err, ErrDuplicateService)
}

func TestRepositorySoftDelete_DetachesProviders(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Now()
	id := "5e0a0000-0000-4000-8000-000000000001"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE services`).WithArgs(at, id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM provider_services WHERE service_id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.SoftDelete(context.Background(), id, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySoftDelete_NotFoundRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE services`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.SoftDelete(context.Background(), "missing", at), ErrServiceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListCategories(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`GROUP BY category`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).AddRow("dental", 2).AddRow("general", 5))

	cats, err := repo.ListCategories(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []Category{{Name: "dental", Services: 2}, {Name: "general", Services: 5}}, cats)
}
