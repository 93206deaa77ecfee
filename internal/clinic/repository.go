package clinic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/db"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/geo"
	"github.com/google/uuid"
)

const clinicColumns = `id, name, description, address, city, phone, email,
	latitude, longitude, opening_hours, is_active, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClinic(row rowScanner, extra ...interface{}) (*Clinic, error) {
	var c Clinic
	var description, phone, email, openingHours sql.NullString

	dest := []interface{}{
		&c.ID, &c.Name, &description, &c.Address, &c.City, &phone, &email,
		&c.Latitude, &c.Longitude, &openingHours, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	c.Description = description.String
	c.Phone = phone.String
	c.Email = email.String
	c.OpeningHours = openingHours.String
	return &c, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mapWriteError(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrDuplicateClinic
	}
	return err
}

func (r *Repository) Create(ctx context.Context, req CreateClinicRequest) (*Clinic, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	query := `
		INSERT INTO clinics (id, name, description, address, city, phone, email,
			latitude, longitude, opening_hours, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + clinicColumns

	c, err := scanClinic(r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		strings.TrimSpace(req.Name),
		nullable(req.Description),
		strings.TrimSpace(req.Address),
		strings.TrimSpace(req.City),
		nullable(req.Phone),
		nullable(strings.ToLower(req.Email)),
		*req.Latitude,
		*req.Longitude,
		nullable(req.OpeningHours),
		isActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", mapWriteError(err))
	}
	return c, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = $1 AND deleted_at IS NULL`

	c, err := scanClinic(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClinicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query clinic: %w", err)
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Clinic, int, error) {
	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR city ILIKE $%d)", len(args), len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clinics "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clinics: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM clinics
		%s
		ORDER BY name ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, clinicColumns, whereClause, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query clinics: %w", err)
	}
	defer rows.Close()

	clinics := []Clinic{}
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan clinic: %w", err)
		}
		clinics = append(clinics, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating clinics: %w", err)
	}
	return clinics, total, nil
}

func (r *Repository) Update(ctx context.Context, id string, req UpdateClinicRequest) (*Clinic, error) {
	var updates []string
	var args []interface{}

	set := func(column string, value interface{}) {
		args = append(args, value)
		updates = append(updates, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.Description != nil {
		set("description", nullable(*req.Description))
	}
	if req.Address != nil {
		set("address", strings.TrimSpace(*req.Address))
	}
	if req.City != nil {
		set("city", strings.TrimSpace(*req.City))
	}
	if req.Phone != nil {
		set("phone", nullable(*req.Phone))
	}
	if req.Email != nil {
		set("email", nullable(strings.ToLower(*req.Email)))
	}
	if req.Latitude != nil {
		set("latitude", *req.Latitude)
	}
	if req.Longitude != nil {
		set("longitude", *req.Longitude)
	}
	if req.OpeningHours != nil {
		set("opening_hours", nullable(*req.OpeningHours))
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
		UPDATE clinics
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(updates, ", "), len(args), clinicColumns)

	c, err := scanClinic(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClinicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update clinic: %w", mapWriteError(err))
	}
	return c, nil
}

func (r *Repository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE clinics
		SET deleted_at = $1, is_active = FALSE, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete clinic: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrClinicNotFound
	}
	return nil
}

// HasActiveAppointments reports whether the clinic has pending or confirmed
// appointments that have not started yet.
func (r *Repository) HasActiveAppointments(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE clinic_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND starts_at > now()
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check clinic appointments: %w", err)
	}
	return exists, nil
}

// FindNearby orders active clinics by haversine distance. The bounding box
// prefilter lets the (latitude, longitude) index discard far rows before the
// distance expression is evaluated.
func (r *Repository) FindNearby(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]NearbyClinic, error) {
	box := geo.BoundingBox(center, radiusKm)
	minLng, maxLng := box.MinLng, box.MaxLng
	if box.CrossesAntimeridian() {
		minLng, maxLng = -180, 180
	}

	query := `
		SELECT ` + clinicColumns + `, distance_km
		FROM (
			SELECT *, 2 * 6371.0 * asin(least(1.0, sqrt(
				power(sin(radians(latitude - $1) / 2), 2) +
				cos(radians($1)) * cos(radians(latitude)) *
				power(sin(radians(longitude - $2) / 2), 2)
			))) AS distance_km
			FROM clinics
			WHERE deleted_at IS NULL
			  AND is_active
			  AND latitude BETWEEN $3 AND $4
			  AND longitude BETWEEN $5 AND $6
		) AS candidates
		WHERE distance_km <= $7
		ORDER BY distance_km ASC, id ASC
		LIMIT $8
	`

	rows, err := r.db.QueryContext(ctx, query,
		center.Lat, center.Lng, box.MinLat, box.MaxLat, minLng, maxLng, radiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby clinics: %w", err)
	}
	defer rows.Close()

	result := []NearbyClinic{}
	for rows.Next() {
		var distance float64
		c, err := scanClinic(rows, &distance)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clinic: %w", err)
		}
		result = append(result, NearbyClinic{Clinic: *c, DistanceKm: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clinics: %w", err)
	}
	return result, nil
}

// PurgeDeleted hard-deletes clinics soft-deleted before the cutoff that
// hold no pending or confirmed appointments. Dependent rows cascade.
func (r *Repository) PurgeDeleted(ctx context.Context, before time.Time) ([]string, error) {
	query := `
		DELETE FROM clinics c
		WHERE c.deleted_at IS NOT NULL
		  AND c.deleted_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.clinic_id = c.id AND a.status IN ('pending', 'confirmed')
		  )
		RETURNING c.id
	`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to purge clinics: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan purged clinic: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
