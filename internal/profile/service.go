package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/validation"
	"go.uber.org/zap"
)

type Service struct {
	repo   RepositoryInterface
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo RepositoryInterface, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) GetMyProfile(ctx context.Context, principal *auth.Principal) (*Profile, error) {
	return s.repo.Get(ctx, principal.UserID)
}

// UpsertMyProfile creates the caller's profile on first use, seeding the
// email from the token, and patches it afterwards.
func (s *Service) UpsertMyProfile(ctx context.Context, principal *auth.Principal, req UpsertProfileRequest) (*Profile, bool, error) {
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil || dob.After(s.now()) {
			return nil, false, validation.NewError("date_of_birth", "past")
		}
	}

	p, created, err := s.repo.Upsert(ctx, principal.UserID, principal.Email, req)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info("profile created", zap.String("user_id", p.ID))
	}
	return p, created, nil
}

func (s *Service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProfiles(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[Profile], error) {
	params.Validate()
	profiles, total, err := s.repo.List(ctx, filter, params.Limit, params.CalculateOffset())
	if err != nil {
		return pagination.Page[Profile]{}, fmt.Errorf("failed to list profiles: %w", err)
	}
	return pagination.NewPage(profiles, params, total), nil
}
