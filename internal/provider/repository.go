package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/db"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const providerSelect = `
	SELECT p.id, p.clinic_id, p.full_name, p.specialty, p.email, p.phone, p.bio,
		p.is_active, p.created_at, p.updated_at,
		COALESCE((SELECT array_agg(ps.service_id::text ORDER BY ps.service_id)
			FROM provider_services ps WHERE ps.provider_id = p.id), '{}')
	FROM providers p`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProvider(row rowScanner) (*Provider, error) {
	var p Provider
	var email, phone, bio sql.NullString
	var serviceIDs pq.StringArray

	err := row.Scan(&p.ID, &p.ClinicID, &p.FullName, &p.Specialty, &email, &phone, &bio,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt, &serviceIDs)
	if err != nil {
		return nil, err
	}

	p.Email = email.String
	p.Phone = phone.String
	p.Bio = bio.String
	p.ServiceIDs = []string(serviceIDs)
	if p.ServiceIDs == nil {
		p.ServiceIDs = []string{}
	}
	return &p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *Repository) Create(ctx context.Context, req CreateProviderRequest) (*Provider, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	id := uuid.NewString()

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO providers (id, clinic_id, full_name, specialty, email, phone, bio, is_active)
			SELECT $1, c.id, $3, $4, $5, $6, $7, $8
			FROM clinics c
			WHERE c.id = $2 AND c.deleted_at IS NULL
		`, id, req.ClinicID, strings.TrimSpace(req.FullName), strings.TrimSpace(req.Specialty),
			nullable(strings.ToLower(req.Email)), nullable(req.Phone), nullable(req.Bio), isActive)
		if err != nil {
			return fmt.Errorf("failed to insert provider: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrClinicNotFound
		}

		if len(req.ServiceIDs) > 0 {
			return replaceServices(ctx, tx, id, req.ClinicID, req.ServiceIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) Get(ctx context.Context, id string) (*Provider, error) {
	query := providerSelect + ` WHERE p.id = $1 AND p.deleted_at IS NULL`

	p, err := scanProvider(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query provider: %w", err)
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Provider, int, error) {
	where := []string{"p.deleted_at IS NULL"}
	var args []interface{}

	if filter.ClinicID != "" {
		args = append(args, filter.ClinicID)
		where = append(where, fmt.Sprintf("p.clinic_id = $%d", len(args)))
	}
	if filter.Specialty != "" {
		args = append(args, filter.Specialty)
		where = append(where, fmt.Sprintf("p.specialty ILIKE $%d", len(args)))
	}
	if filter.ServiceID != "" {
		args = append(args, filter.ServiceID)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM provider_services ps WHERE ps.provider_id = p.id AND ps.service_id = $%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("p.full_name ILIKE $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("p.is_active = $%d", len(args)))
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM providers p"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count providers: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY p.full_name ASC, p.id ASC LIMIT $%d OFFSET $%d",
		providerSelect, whereClause, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	providers := []Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan provider: %w", err)
		}
		providers = append(providers, *p)
	}
	return providers, total, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id string, req UpdateProviderRequest) (*Provider, error) {
	var updates []string
	var args []interface{}

	set := func(column string, value interface{}) {
		args = append(args, value)
		updates = append(updates, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.FullName != nil {
		set("full_name", strings.TrimSpace(*req.FullName))
	}
	if req.Specialty != nil {
		set("specialty", strings.TrimSpace(*req.Specialty))
	}
	if req.Email != nil {
		set("email", nullable(strings.ToLower(*req.Email)))
	}
	if req.Phone != nil {
		set("phone", nullable(*req.Phone))
	}
	if req.Bio != nil {
		set("bio", nullable(*req.Bio))
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
		UPDATE providers
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
	`, strings.Join(updates, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update provider: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrProviderNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE providers
		SET deleted_at = $1, is_active = FALSE, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete provider: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrProviderNotFound
	}
	return nil
}

func (r *Repository) HasUpcomingAppointments(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE provider_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND starts_at > now()
		)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check provider appointments: %w", err)
	}
	return exists, nil
}

// lockProvider takes a row lock on the provider and returns its clinic.
func lockProvider(ctx context.Context, tx *sql.Tx, providerID string) (string, error) {
	var clinicID string
	err := tx.QueryRowContext(ctx,
		`SELECT clinic_id FROM providers WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		providerID).Scan(&clinicID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProviderNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock provider: %w", err)
	}
	return clinicID, nil
}

func (r *Repository) ReplaceServices(ctx context.Context, providerID string, serviceIDs []string) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		clinicID, err := lockProvider(ctx, tx, providerID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM provider_services WHERE provider_id = $1`, providerID); err != nil {
			return fmt.Errorf("failed to clear provider services: %w", err)
		}
		if len(serviceIDs) == 0 {
			return nil
		}
		return replaceServices(ctx, tx, providerID, clinicID, serviceIDs)
	})
}

// replaceServices links serviceIDs to the provider. Every id must be a
// live service of the same clinic.
func replaceServices(ctx context.Context, tx *sql.Tx, providerID, clinicID string, serviceIDs []string) error {
	unique := dedupe(serviceIDs)

	result, err := tx.ExecContext(ctx, `
		INSERT INTO provider_services (provider_id, service_id)
		SELECT $1, s.id
		FROM services s
		WHERE s.id = ANY($2::uuid[]) AND s.clinic_id = $3 AND s.deleted_at IS NULL
	`, providerID, pq.Array(unique), clinicID)
	if err != nil {
		return fmt.Errorf("failed to link provider services: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if int(rows) != len(unique) {
		return ErrInvalidService
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (r *Repository) ReplaceWorkingHours(ctx context.Context, providerID string, hours []WorkingHours) (string, error) {
	var clinicID string
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		clinicID, err = lockProvider(ctx, tx, providerID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM working_hours WHERE provider_id = $1`, providerID); err != nil {
			return fmt.Errorf("failed to clear working hours: %w", err)
		}
		for _, h := range hours {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO working_hours (id, provider_id, weekday, start_time, end_time)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.NewString(), providerID, h.Weekday, h.StartTime, h.EndTime)
			if err != nil {
				return fmt.Errorf("failed to insert working hours: %w", err)
			}
		}
		return nil
	})
	return clinicID, err
}

func (r *Repository) GetWorkingHours(ctx context.Context, providerID string) ([]WorkingHours, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1 AND deleted_at IS NULL)`,
		providerID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to query provider: %w", err)
	}
	if !exists {
		return nil, ErrProviderNotFound
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, provider_id, weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM working_hours
		WHERE provider_id = $1
		ORDER BY weekday, start_time
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query working hours: %w", err)
	}
	defer rows.Close()

	hours := []WorkingHours{}
	for rows.Next() {
		var h WorkingHours
		if err := rows.Scan(&h.ID, &h.ProviderID, &h.Weekday, &h.StartTime, &h.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan working hours: %w", err)
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}
