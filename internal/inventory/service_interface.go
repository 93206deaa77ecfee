package inventory

import (
	"context"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
)

type ServiceInterface interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[Item], error)
	UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*Item, error)
	DeleteItem(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta int, reason string) (*Adjustment, error)
	ListLowStock(ctx context.Context, clinicID string) ([]Item, error)
}

var _ ServiceInterface = (*Service)(nil)
