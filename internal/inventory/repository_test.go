package inventory

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemCols = []string{
	"id", "clinic_id", "name", "sku", "category", "unit", "quantity", "reorder_level",
	"unit_cost_cents", "expires_at", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRepository(conn), mock
}

func itemRow(quantity, reorder int) []driver.Value {
	now := time.Now()
	return []driver.Value{testItemID, testClinicID, "Gauze", "GZ-1", "consumables", "box", quantity, reorder, 250, "2031-05-01", now, now}
}

func TestRepositoryAdjust(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT quantity FROM inventory_items WHERE id = \$1 FOR UPDATE`).
		WithArgs(testItemID).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(12))
	mock.ExpectQuery(`UPDATE inventory_items SET quantity = quantity \+ \$2`).
		WithArgs(testItemID, -3, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(itemRow(9, 10)...))
	mock.ExpectCommit()

	adj, err := repo.Adjust(context.Background(), testItemID, -3)
	require.NoError(t, err)
	assert.Equal(t, 12, adj.Previous)
	assert.Equal(t, 9, adj.Item.Quantity)
	assert.Equal(t, "2031-05-01", adj.Item.ExpiresAt)
	assert.True(t, adj.CrossedReorderLevel())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryAdjust_InsufficientStock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(2))
	mock.ExpectRollback()

	_, err := repo.Adjust(context.Background(), testItemID, -3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryAdjust_Overflow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(2147000000))
	mock.ExpectQuery(`UPDATE inventory_items SET quantity = quantity \+ \$2`).
		WillReturnError(&pq.Error{Code: "22003", Message: "integer out of range"})
	mock.ExpectRollback()

	_, err := repo.Adjust(context.Background(), testItemID, 1000000)
	assert.ErrorIs(t, err, ErrQuantityTooLarge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryAdjust_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Adjust(context.Background(), testItemID, 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_Errors(t *testing.T) {
	req := CreateItemRequest{ClinicID: testClinicID, Name: "Gauze", SKU: "gz-1"}

	t.Run("duplicate sku", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO inventory_items`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "inventory_items_clinic_sku_key"})

		_, err := repo.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrDuplicateSKU)
	})

	t.Run("unknown clinic", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO inventory_items`).WillReturnError(sql.ErrNoRows)

		_, err := repo.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrClinicNotFound)
	})

	t.Run("normalises sku and unit", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`INSERT INTO inventory_items`).
			WithArgs(sqlmock.AnyArg(), testClinicID, "Gauze", "GZ-1", nil, DefaultUnit, 0, 0, 0, nil).
			WillReturnRows(sqlmock.NewRows(itemCols).AddRow(itemRow(0, 0)...))

		_, err := repo.Create(context.Background(), req)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepositoryDelete_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM inventory_items WHERE id = \$1`).
		WithArgs(testItemID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), testItemID), ErrItemNotFound)
}

func TestRepositoryListLowStock(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`WHERE quantity <= reorder_level`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(itemRow(1, 5)...).AddRow(itemRow(4, 5)...))

	items, err := repo.ListLowStock(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
