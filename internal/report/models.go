package report

import "time"

// MaxRange bounds the period a single report may cover.
const MaxRange = 366 * 24 * time.Hour

const (
	DefaultTopServices = 10
	MaxTopServices     = 50
)

// Period is a half-open [From, To) reporting window.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type AppointmentSummary struct {
	Period
	ClinicID       string         `json:"clinic_id,omitempty"`
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	CompletionRate float64        `json:"completion_rate"`
	NoShowRate     float64        `json:"no_show_rate"`
}

type ClinicRevenue struct {
	ClinicID     string `json:"clinic_id"`
	ClinicName   string `json:"clinic_name"`
	Currency     string `json:"currency"`
	Appointments int    `json:"appointments"`
	RevenueCents int64  `json:"revenue_cents"`
}

type RevenueReport struct {
	Period
	Clinics []ClinicRevenue `json:"clinics"`
}

type ServiceUsage struct {
	ServiceID  string `json:"service_id"`
	Name       string `json:"name"`
	ClinicID   string `json:"clinic_id"`
	Bookings   int    `json:"bookings"`
	Completed  int    `json:"completed"`
	PriceCents int64  `json:"price_cents"`
}

type TopServicesReport struct {
	Period
	Services []ServiceUsage `json:"services"`
}

type InventoryValuation struct {
	ClinicID      string `json:"clinic_id,omitempty"`
	Items         int    `json:"items"`
	Units         int64  `json:"units"`
	ValueCents    int64  `json:"value_cents"`
	LowStockItems int    `json:"low_stock_items"`
	ExpiredItems  int    `json:"expired_items"`
	ExpiredValue  int64  `json:"expired_value_cents"`
	ValuationDate string `json:"valuation_date"`
}
