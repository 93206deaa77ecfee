package inventory

import "context"

type RepositoryInterface interface {
	Create(ctx context.Context, req CreateItemRequest) (*Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Item, int, error)
	Update(ctx context.Context, id string, req UpdateItemRequest) (*Item, error)
	Delete(ctx context.Context, id string) error
	Adjust(ctx context.Context, id string, delta int) (*Adjustment, error)
	ListLowStock(ctx context.Context, clinicID string) ([]Item, error)
}
