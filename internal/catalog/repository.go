package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/db"
	"github.com/google/uuid"
)

const serviceColumns = `id, clinic_id, name, category, description, duration_minutes,
	price_cents, currency, is_active, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (*MedicalService, error) {
	var s MedicalService
	var description sql.NullString
	err := row.Scan(&s.ID, &s.ClinicID, &s.Name, &s.Category, &description, &s.DurationMinutes,
		&s.PriceCents, &s.Currency, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Description = description.String
	return &s, nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func mapWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return ErrDuplicateService
	case db.IsForeignKeyViolation(err):
		return ErrClinicNotFound
	}
	return err
}

// Create inserts the service only when its clinic exists and is not deleted.
func (r *Repository) Create(ctx context.Context, req CreateServiceRequest) (*MedicalService, error) {
	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	query := `
		INSERT INTO services (id, clinic_id, name, category, description,
			duration_minutes, price_cents, currency, is_active)
		SELECT $1, c.id, $3, $4, $5, $6, $7, $8, $9
		FROM clinics c
		WHERE c.id = $2 AND c.deleted_at IS NULL
		RETURNING ` + serviceColumns

	s, err := scanService(r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		req.ClinicID,
		strings.TrimSpace(req.Name),
		strings.ToLower(strings.TrimSpace(req.Category)),
		sql.NullString{String: req.Description, Valid: req.Description != ""},
		req.DurationMinutes,
		*req.PriceCents,
		currency,
		isActive,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClinicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", mapWriteError(err))
	}
	return s, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*MedicalService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1 AND deleted_at IS NULL`

	s, err := scanService(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query service: %w", err)
	}
	return s, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]MedicalService, int, error) {
	where := []string{"deleted_at IS NULL"}
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
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM services "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM services
		%s
		ORDER BY category ASC, name ASC
		LIMIT $%d OFFSET $%d
	`, serviceColumns, whereClause, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	services := []MedicalService{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, *s)
	}
	return services, total, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id string, req UpdateServiceRequest) (*MedicalService, error) {
	var updates []string
	var args []interface{}

	set := func(column string, value interface{}) {
		args = append(args, value)
		updates = append(updates, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.Category != nil {
		set("category", strings.ToLower(strings.TrimSpace(*req.Category)))
	}
	if req.Description != nil {
		set("description", sql.NullString{String: *req.Description, Valid: *req.Description != ""})
	}
	if req.DurationMinutes != nil {
		set("duration_minutes", *req.DurationMinutes)
	}
	if req.PriceCents != nil {
		set("price_cents", *req.PriceCents)
	}
	if req.Currency != nil {
		set("currency", *req.Currency)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}

	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE services
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(updates, ", "), len(args), serviceColumns)

	s, err := scanService(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update service: %w", mapWriteError(err))
	}
	return s, nil
}

// SoftDelete hides the service and detaches it from providers so it can no
// longer be booked. Existing appointments keep their reference.
func (r *Repository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE services
			SET deleted_at = $1, is_active = FALSE, updated_at = $1
			WHERE id = $2 AND deleted_at IS NULL
		`, at, id)
		if err != nil {
			return fmt.Errorf("failed to soft delete service: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrServiceNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM provider_services WHERE service_id = $1`, id); err != nil {
			return fmt.Errorf("failed to detach service from providers: %w", err)
		}
		return nil
	})
}

// ListCategories returns the distinct categories of active services,
// optionally restricted to one clinic.
func (r *Repository) ListCategories(ctx context.Context, clinicID string) ([]Category, error) {
	query := `
		SELECT category, COUNT(*)
		FROM services
		WHERE deleted_at IS NULL AND is_active
		  AND ($1 = '' OR clinic_id::text = $1)
		GROUP BY category
		ORDER BY category ASC
	`
	rows, err := r.db.QueryContext(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.Services); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
