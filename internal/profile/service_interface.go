package profile

import (
	"context"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
)

type ServiceInterface interface {
	GetMyProfile(ctx context.Context, principal *auth.Principal) (*Profile, error)
	UpsertMyProfile(ctx context.Context, principal *auth.Principal, req UpsertProfileRequest) (*Profile, bool, error)
	GetProfile(ctx context.Context, id string) (*Profile, error)
	ListProfiles(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[Profile], error)
}

var _ ServiceInterface = (*Service)(nil)
