package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const profileColumns = `id, full_name, email, phone, to_char(date_of_birth, 'YYYY-MM-DD'), gender, address,
	emergency_contact_name, emergency_contact_phone, created_at, updated_at`

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

func scanProfile(row rowScanner, extra ...interface{}) (*Profile, error) {
	var p Profile
	var email, phone, dob, gender, address, ecName, ecPhone sql.NullString

	dest := []interface{}{&p.ID, &p.FullName, &email, &phone, &dob, &gender, &address,
		&ecName, &ecPhone, &p.CreatedAt, &p.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	p.Email = email.String
	p.Phone = phone.String
	p.DateOfBirth = dob.String
	p.Gender = gender.String
	p.Address = address.String
	p.EmergencyContactName = ecName.String
	p.EmergencyContactPhone = ecPhone.String
	return &p, nil
}

// text passes nil for omitted fields so COALESCE keeps the stored value.
func text(s *string) interface{} {
	if s == nil {
		return nil
	}
	return strings.TrimSpace(*s)
}

func (r *Repository) Get(ctx context.Context, id string) (*Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (r *Repository) Upsert(ctx context.Context, id, claimEmail string, req UpsertProfileRequest) (*Profile, bool, error) {
	var email interface{}
	if req.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, full_name, email, phone, date_of_birth, gender, address,
			emergency_contact_name, emergency_contact_phone)
		VALUES ($1, COALESCE($2::text, ''), COALESCE($3::text, NULLIF($10::text, '')), $4::text, NULLIF($5::text, '')::date, $6::text, $7::text, $8::text, $9::text)
		ON CONFLICT (id) DO UPDATE SET
			full_name = COALESCE($2::text, profiles.full_name),
			email = COALESCE($3::text, profiles.email),
			phone = COALESCE($4::text, profiles.phone),
			date_of_birth = COALESCE(NULLIF($5::text, '')::date, profiles.date_of_birth),
			gender = COALESCE($6::text, profiles.gender),
			address = COALESCE($7::text, profiles.address),
			emergency_contact_name = COALESCE($8::text, profiles.emergency_contact_name),
			emergency_contact_phone = COALESCE($9::text, profiles.emergency_contact_phone),
			updated_at = now()
		RETURNING `+profileColumns+`, (xmax = 0)`,
		id, text(req.FullName), email, text(req.Phone), text(req.DateOfBirth), text(req.Gender),
		text(req.Address), text(req.EmergencyContactName), text(req.EmergencyContactPhone),
		strings.ToLower(claimEmail))

	var created bool
	p, err := scanProfile(row, &created)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return p, created, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Profile, int, error) {
	whereClause := ""
	var args []interface{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		whereClause = "WHERE full_name ILIKE $1 OR email ILIKE $1"
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM profiles
		%s
		ORDER BY full_name ASC, id ASC
		LIMIT $%d OFFSET $%d
	`, profileColumns, whereClause, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, total, nil
}
