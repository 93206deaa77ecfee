package profile

import "context"

type RepositoryInterface interface {
	Get(ctx context.Context, id string) (*Profile, error)
	// Upsert returns the stored profile and whether it was created.
	Upsert(ctx context.Context, id, claimEmail string, req UpsertProfileRequest) (*Profile, bool, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Profile, int, error)
}
