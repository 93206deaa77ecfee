package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Repository struct {
	db *sql.DB
}

var _ RepositoryInterface = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountByStatus(ctx context.Context, clinicID string, p Period) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		WHERE starts_at >= $1 AND starts_at < $2 AND ($3 = '' OR clinic_id::text = $3)
		GROUP BY status
	`, p.From, p.To, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}
	return counts, nil
}

// RevenueByClinic sums the service price of completed appointments.
func (r *Repository) RevenueByClinic(ctx context.Context, p Period) ([]ClinicRevenue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, s.currency, COUNT(*), COALESCE(SUM(s.price_cents), 0)
		FROM appointments a
		JOIN clinics c ON c.id = a.clinic_id
		JOIN services s ON s.id = a.service_id
		WHERE a.status = 'completed' AND a.starts_at >= $1 AND a.starts_at < $2
		GROUP BY c.id, c.name, s.currency
		ORDER BY SUM(s.price_cents) DESC, c.name ASC
	`, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue: %w", err)
	}
	defer rows.Close()

	out := []ClinicRevenue{}
	for rows.Next() {
		var cr ClinicRevenue
		if err := rows.Scan(&cr.ClinicID, &cr.ClinicName, &cr.Currency, &cr.Appointments, &cr.RevenueCents); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		out = append(out, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenue rows: %w", err)
	}
	return out, nil
}

// TopServices ranks services by bookings that were not cancelled.
func (r *Repository) TopServices(ctx context.Context, p Period, limit int) ([]ServiceUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.clinic_id, COUNT(*),
			COUNT(*) FILTER (WHERE a.status = 'completed'), s.price_cents
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.status <> 'cancelled' AND a.starts_at >= $1 AND a.starts_at < $2
		GROUP BY s.id, s.name, s.clinic_id, s.price_cents
		ORDER BY COUNT(*) DESC, s.name ASC
		LIMIT $3
	`, p.From, p.To, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top services: %w", err)
	}
	defer rows.Close()

	out := []ServiceUsage{}
	for rows.Next() {
		var u ServiceUsage
		if err := rows.Scan(&u.ServiceID, &u.Name, &u.ClinicID, &u.Bookings, &u.Completed, &u.PriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan service usage: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service usage: %w", err)
	}
	return out, nil
}

func (r *Repository) InventoryValuation(ctx context.Context, clinicID string, today time.Time) (*InventoryValuation, error) {
	v := InventoryValuation{ClinicID: clinicID, ValuationDate: today.Format("2006-01-02")}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(quantity), 0),
			COALESCE(SUM(quantity::bigint * unit_cost_cents), 0),
			COUNT(*) FILTER (WHERE quantity <= reorder_level),
			COUNT(*) FILTER (WHERE expires_at < $2::date),
			COALESCE(SUM(quantity::bigint * unit_cost_cents) FILTER (WHERE expires_at < $2::date), 0)
		FROM inventory_items
		WHERE ($1 = '' OR clinic_id::text = $1)
	`, clinicID, v.ValuationDate).Scan(&v.Items, &v.Units, &v.ValueCents, &v.LowStockItems, &v.ExpiredItems, &v.ExpiredValue)
	if err != nil {
		return nil, fmt.Errorf("failed to value inventory: %w", err)
	}
	return &v, nil
}
