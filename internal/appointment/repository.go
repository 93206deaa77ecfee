package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/db"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/provider"
	"github.com/google/uuid"
)

const appointmentColumns = `id, patient_id, provider_id, clinic_id, service_id, starts_at, ends_at,
	status, notes, cancellation_reason, cancelled_by, created_at, updated_at,
	confirmed_at, cancelled_at, completed_at`

type Repository struct {
	db *sql.DB
}

var _ RepositoryInterface = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*Appointment, error) {
	var a Appointment
	var status string
	var notes, reason, cancelledBy sql.NullString
	var confirmedAt, cancelledAt, completedAt sql.NullTime

	err := row.Scan(&a.ID, &a.PatientID, &a.ProviderID, &a.ClinicID, &a.ServiceID,
		&a.StartsAt, &a.EndsAt, &status, &notes, &reason, &cancelledBy,
		&a.CreatedAt, &a.UpdatedAt, &confirmedAt, &cancelledAt, &completedAt)
	if err != nil {
		return nil, err
	}

	a.Status = Status(status)
	a.Notes = notes.String
	a.CancellationReason = reason.String
	a.CancelledBy = cancelledBy.String
	a.ConfirmedAt = timePtr(confirmedAt)
	a.CancelledAt = timePtr(cancelledAt)
	a.CompletedAt = timePtr(completedAt)
	return &a, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// loadSchedule reads the provider, the service and the provider's weekly
// windows. With lock set the provider row is held FOR UPDATE, which
// serialises bookings per provider.
func loadSchedule(ctx context.Context, q querier, providerID, serviceID string, lock bool) (*Schedule, error) {
	s := Schedule{ProviderID: providerID}

	// A provider at a deleted clinic is gone; at a closed clinic it is inactive.
	query := `
		SELECT p.clinic_id, p.is_active AND c.is_active
		FROM providers p
		JOIN clinics c ON c.id = p.clinic_id
		WHERE p.id = $1 AND p.deleted_at IS NULL AND c.deleted_at IS NULL`
	if lock {
		query += ` FOR UPDATE OF p`
	}
	err := q.QueryRowContext(ctx, query, providerID).Scan(&s.ClinicID, &s.ProviderActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}

	var minutes int
	err = q.QueryRowContext(ctx, `
		SELECT s.clinic_id, s.is_active, s.duration_minutes,
			EXISTS (SELECT 1 FROM provider_services ps WHERE ps.provider_id = $1 AND ps.service_id = s.id)
		FROM services s
		WHERE s.id = $2 AND s.deleted_at IS NULL
	`, providerID, serviceID).Scan(&s.ServiceClinicID, &s.ServiceActive, &minutes, &s.Offers)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	s.Duration = time.Duration(minutes) * time.Minute

	rows, err := q.QueryContext(ctx, `
		SELECT weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM working_hours
		WHERE provider_id = $1
		ORDER BY weekday, start_time
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load working hours: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w Window
		var start, end string
		if err := rows.Scan(&w.Weekday, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan working hours: %w", err)
		}
		if w.Start, err = provider.Minutes(start); err != nil {
			return nil, err
		}
		if w.End, err = provider.Minutes(end); err != nil {
			return nil, err
		}
		s.Windows = append(s.Windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate working hours: %w", err)
	}
	return &s, nil
}

// patientOverlapConstraint backs the patient calendar check in insert; any
// other exclusion violation on appointments is the provider's.
const patientOverlapConstraint = "appointments_patient_no_overlap"

// insert checks both calendars and stores a pending appointment. The
// provider row lock serialises one provider's calendar only, so a
// concurrent booking by the same patient elsewhere is caught by the
// patient exclusion constraint.
func insert(ctx context.Context, tx *sql.Tx, a *Appointment) (*Appointment, error) {
	var busy bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE provider_id = $1 AND status IN ('pending', 'confirmed')
				AND starts_at < $3 AND ends_at > $2
		)
	`, a.ProviderID, a.StartsAt, a.EndsAt).Scan(&busy)
	if err != nil {
		return nil, fmt.Errorf("failed to check provider calendar: %w", err)
	}
	if busy {
		return nil, ErrSlotUnavailable
	}

	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE patient_id = $1 AND status IN ('pending', 'confirmed')
				AND starts_at < $3 AND ends_at > $2
		)
	`, a.PatientID, a.StartsAt, a.EndsAt).Scan(&busy)
	if err != nil {
		return nil, fmt.Errorf("failed to check patient calendar: %w", err)
	}
	if busy {
		return nil, ErrPatientOverlap
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO appointments (id, patient_id, provider_id, clinic_id, service_id, starts_at, ends_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
		RETURNING `+appointmentColumns,
		uuid.NewString(), a.PatientID, a.ProviderID, a.ClinicID, a.ServiceID,
		a.StartsAt.UTC(), a.EndsAt.UTC(), nullable(a.Notes))
	created, err := scanAppointment(row)
	if err != nil {
		if db.IsExclusionViolation(err) {
			return nil, overlapError(err)
		}
		return nil, fmt.Errorf("failed to insert appointment: %w", err)
	}
	return created, nil
}

func overlapError(err error) error {
	if db.Constraint(err) == patientOverlapConstraint {
		return ErrPatientOverlap
	}
	return ErrSlotUnavailable
}

func (r *Repository) Book(ctx context.Context, d Draft, plan PlanFunc) (*Appointment, error) {
	var created *Appointment
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		s, err := loadSchedule(ctx, tx, d.ProviderID, d.ServiceID, true)
		if err != nil {
			return err
		}
		endsAt, err := plan(*s)
		if err != nil {
			return err
		}
		created, err = insert(ctx, tx, &Appointment{
			PatientID:  d.PatientID,
			ProviderID: d.ProviderID,
			ClinicID:   s.ClinicID,
			ServiceID:  d.ServiceID,
			StartsAt:   d.StartsAt,
			EndsAt:     endsAt,
			Notes:      d.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Repository) Reschedule(ctx context.Context, id string, startsAt time.Time, cancelledBy string, at time.Time, plan ReplanFunc) (*Appointment, *Appointment, error) {
	var original, replacement *Appointment
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var providerID, serviceID string
		err := tx.QueryRowContext(ctx, `SELECT provider_id, service_id FROM appointments WHERE id = $1`, id).
			Scan(&providerID, &serviceID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAppointmentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get appointment: %w", err)
		}

		// provider first, then the appointment: the same order Book uses
		s, err := loadSchedule(ctx, tx, providerID, serviceID, true)
		if err != nil {
			return err
		}
		original, err = lockAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		endsAt, err := plan(original, *s)
		if err != nil {
			return err
		}

		original.Status = StatusCancelled
		original.CancellationReason = "rescheduled"
		original.CancelledBy = cancelledBy
		original.CancelledAt = &at
		if original, err = save(ctx, tx, original, at); err != nil {
			return err
		}

		replacement, err = insert(ctx, tx, &Appointment{
			PatientID:  original.PatientID,
			ProviderID: original.ProviderID,
			ClinicID:   original.ClinicID,
			ServiceID:  original.ServiceID,
			StartsAt:   startsAt,
			EndsAt:     endsAt,
			Notes:      original.Notes,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return original, replacement, nil
}

func lockAppointment(ctx context.Context, tx *sql.Tx, id string) (*Appointment, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock appointment: %w", err)
	}
	return a, nil
}

func save(ctx context.Context, tx *sql.Tx, a *Appointment, at time.Time) (*Appointment, error) {
	row := tx.QueryRowContext(ctx, `
		UPDATE appointments
		SET status = $2, cancellation_reason = $3, cancelled_by = $4,
			confirmed_at = $5, cancelled_at = $6, completed_at = $7, updated_at = $8
		WHERE id = $1
		RETURNING `+appointmentColumns,
		a.ID, string(a.Status), nullable(a.CancellationReason), nullable(a.CancelledBy),
		nullTime(a.ConfirmedAt), nullTime(a.CancelledAt), nullTime(a.CompletedAt), at)
	updated, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return updated, nil
}

func (r *Repository) Transition(ctx context.Context, id string, at time.Time, apply ApplyFunc) (*Appointment, error) {
	var updated *Appointment
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		a, err := lockAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := apply(a); err != nil {
			return err
		}
		updated, err = save(ctx, tx, a, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Appointment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Appointment, int, error) {
	var conditions []string
	var args []interface{}
	add := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.PatientID != "" {
		add("patient_id = $%d", filter.PatientID)
	}
	if filter.ProviderID != "" {
		add("provider_id = $%d", filter.ProviderID)
	}
	if filter.ClinicID != "" {
		add("clinic_id = $%d", filter.ClinicID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.From != nil {
		add("starts_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("starts_at < $%d", *filter.To)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments%s ORDER BY starts_at, id LIMIT $%d OFFSET $%d`,
		appointmentColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	appointments := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *Repository) Schedule(ctx context.Context, providerID, serviceID string) (*Schedule, error) {
	return loadSchedule(ctx, r.db, providerID, serviceID, false)
}

func (r *Repository) Busy(ctx context.Context, providerID string, from, to time.Time) ([]Slot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT starts_at, ends_at FROM appointments
		WHERE provider_id = $1 AND status IN ('pending', 'confirmed')
			AND starts_at < $3 AND ends_at > $2
		ORDER BY starts_at
	`, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load busy slots: %w", err)
	}
	defer rows.Close()

	var busy []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.StartsAt, &s.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan busy slot: %w", err)
		}
		busy = append(busy, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate busy slots: %w", err)
	}
	return busy, nil
}

// ExpirePending cancels pending appointments whose start has passed.
func (r *Repository) ExpirePending(ctx context.Context, now time.Time) ([]Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE appointments
		SET status = 'cancelled', cancellation_reason = 'expired', cancelled_by = 'system',
			cancelled_at = $1, updated_at = $1
		WHERE status = 'pending' AND starts_at <= $1
		RETURNING `+appointmentColumns, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire pending appointments: %w", err)
	}
	defer rows.Close()

	var expired []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		expired = append(expired, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expired appointments: %w", err)
	}
	return expired, nil
}
