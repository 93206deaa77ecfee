package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/db"
	"github.com/google/uuid"
)

const itemColumns = `id, clinic_id, name, sku, category, unit, quantity, reorder_level,
	unit_cost_cents, to_char(expires_at, 'YYYY-MM-DD'), created_at, updated_at`

type Repository struct {
	db *sql.DB
}

var _ RepositoryInterface = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	var i Item
	var category, expiresAt sql.NullString
	err := row.Scan(&i.ID, &i.ClinicID, &i.Name, &i.SKU, &category, &i.Unit, &i.Quantity,
		&i.ReorderLevel, &i.UnitCostCents, &expiresAt, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.Category = category.String
	i.ExpiresAt = expiresAt.String
	return &i, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mapWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return ErrDuplicateSKU
	case db.IsCheckViolation(err):
		return ErrInsufficientStock
	case db.IsNumericOutOfRange(err):
		return ErrQuantityTooLarge
	}
	return err
}

func (r *Repository) Create(ctx context.Context, req CreateItemRequest) (*Item, error) {
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = DefaultUnit
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO inventory_items (id, clinic_id, name, sku, category, unit, quantity, reorder_level, unit_cost_cents, expires_at)
		SELECT $1, c.id, $3, $4, $5, $6, $7, $8, $9, $10::date
		FROM clinics c
		WHERE c.id = $2 AND c.deleted_at IS NULL
		RETURNING `+itemColumns,
		uuid.NewString(), req.ClinicID, strings.TrimSpace(req.Name), strings.ToUpper(strings.TrimSpace(req.SKU)),
		nullable(strings.ToLower(strings.TrimSpace(req.Category))), unit, req.Quantity, req.ReorderLevel,
		req.UnitCostCents, nullable(req.ExpiresAt))

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClinicNotFound
	}
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrClinicNotFound
		}
		return nil, fmt.Errorf("failed to create inventory item: %w", mapWriteError(err))
	}
	return item, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Item, int, error) {
	var where []string
	var args []interface{}

	if filter.ClinicID != "" {
		args = append(args, filter.ClinicID)
		where = append(where, fmt.Sprintf("clinic_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, strings.ToLower(filter.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args)))
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory_items "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory items: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM inventory_items
		%s
		ORDER BY name ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, itemColumns, whereClause, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query inventory items: %w", err)
	}
	defer rows.Close()

	items, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collect(rows *sql.Rows) ([]Item, error) {
	items := []Item{}
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory items: %w", err)
	}
	return items, nil
}

func (r *Repository) Update(ctx context.Context, id string, req UpdateItemRequest) (*Item, error) {
	var updates []string
	var args []interface{}

	set := func(column string, value interface{}) {
		args = append(args, value)
		updates = append(updates, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.SKU != nil {
		set("sku", strings.ToUpper(strings.TrimSpace(*req.SKU)))
	}
	if req.Category != nil {
		set("category", nullable(strings.ToLower(strings.TrimSpace(*req.Category))))
	}
	if req.Unit != nil {
		set("unit", strings.TrimSpace(*req.Unit))
	}
	if req.ReorderLevel != nil {
		set("reorder_level", *req.ReorderLevel)
	}
	if req.UnitCostCents != nil {
		set("unit_cost_cents", *req.UnitCostCents)
	}
	if req.ExpiresAt != nil {
		args = append(args, nullable(*req.ExpiresAt))
		updates = append(updates, fmt.Sprintf("expires_at = $%d::date", len(args)))
	}

	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE inventory_items
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(updates, ", "), len(args), itemColumns)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", mapWriteError(err))
	}
	return item, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Adjust applies delta under a row lock and returns the quantity before and
// after the change.
func (r *Repository) Adjust(ctx context.Context, id string, delta int) (*Adjustment, error) {
	var adj *Adjustment
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var previous int
		err := tx.QueryRowContext(ctx, `SELECT quantity FROM inventory_items WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock inventory item: %w", err)
		}
		if previous+delta < 0 {
			return ErrInsufficientStock
		}

		item, err := scanItem(tx.QueryRowContext(ctx, `
			UPDATE inventory_items
			SET quantity = quantity + $2, updated_at = $3
			WHERE id = $1
			RETURNING `+itemColumns, id, delta, time.Now().UTC()))
		if err != nil {
			return fmt.Errorf("failed to adjust stock: %w", mapWriteError(err))
		}
		adj = &Adjustment{Item: item, Previous: previous, Delta: delta}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

func (r *Repository) ListLowStock(ctx context.Context, clinicID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE quantity <= reorder_level AND ($1 = '' OR clinic_id::text = $1)
		ORDER BY quantity - reorder_level ASC, name ASC
	`, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}
