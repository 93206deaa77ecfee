package inventory

import "time"

type Item struct {
	ID            string    `json:"id"`
	ClinicID      string    `json:"clinic_id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Category      string    `json:"category,omitempty"`
	Unit          string    `json:"unit"`
	Quantity      int       `json:"quantity"`
	ReorderLevel  int       `json:"reorder_level"`
	UnitCostCents int64     `json:"unit_cost_cents"`
	ExpiresAt     string    `json:"expires_at,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LowStock reports whether the item is at or below its reorder level.
func (i Item) LowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

const DefaultUnit = "unit"

type CreateItemRequest struct {
	ClinicID      string `json:"clinic_id" validate:"required,uuid"`
	Name          string `json:"name" validate:"required,max=200"`
	SKU           string `json:"sku" validate:"required,max=64"`
	Category      string `json:"category" validate:"max=100"`
	Unit          string `json:"unit" validate:"max=32"`
	Quantity      int    `json:"quantity" validate:"min=0,max=2147483647"`
	ReorderLevel  int    `json:"reorder_level" validate:"min=0,max=2147483647"`
	UnitCostCents int64  `json:"unit_cost_cents" validate:"min=0"`
	ExpiresAt     string `json:"expires_at" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateItemRequest is a partial update. Quantity only changes through
// stock adjustments.
type UpdateItemRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=200"`
	SKU           *string `json:"sku" validate:"omitempty,min=1,max=64"`
	Category      *string `json:"category" validate:"omitempty,max=100"`
	Unit          *string `json:"unit" validate:"omitempty,min=1,max=32"`
	ReorderLevel  *int    `json:"reorder_level" validate:"omitempty,min=0,max=2147483647"`
	UnitCostCents *int64  `json:"unit_cost_cents" validate:"omitempty,min=0"`
	ExpiresAt     *string `json:"expires_at" validate:"omitempty,datetime=2006-01-02"`
}

func (r UpdateItemRequest) empty() bool {
	return r.Name == nil && r.SKU == nil && r.Category == nil && r.Unit == nil &&
		r.ReorderLevel == nil && r.UnitCostCents == nil && r.ExpiresAt == nil
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required,min=-1000000,max=1000000"`
	Reason string `json:"reason" validate:"required,max=200"`
}

// Adjustment is the outcome of a stock change.
type Adjustment struct {
	Item     *Item `json:"item"`
	Previous int   `json:"previous_quantity"`
	Delta    int   `json:"delta"`
}

// CrossedReorderLevel reports whether the adjustment took the item from
// above its reorder level to at or below it.
func (a Adjustment) CrossedReorderLevel() bool {
	return a.Previous > a.Item.ReorderLevel && a.Item.LowStock()
}

type ListFilter struct {
	ClinicID string
	Category string
	Search   string
}
