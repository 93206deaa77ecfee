package catalog

import (
	"context"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/cache"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"go.uber.org/zap"
)

// CachePrefix namespaces cached service listings.
const CachePrefix = "services:"

// Service holds the business logic of the service catalog.
type Service struct {
	repo     RepositoryInterface
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewService(repo RepositoryInterface, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if c == nil {
		c = cache.NewMemory(cacheTTL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: c, cacheTTL: cacheTTL, logger: logger}
}

func (s *Service) CreateService(ctx context.Context, req CreateServiceRequest) (*MedicalService, error) {
	svc, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("service created",
		zap.String("service_id", svc.ID),
		zap.String("clinic_id", svc.ClinicID),
		zap.String("category", svc.Category))
	s.invalidate(ctx)
	return svc, nil
}

func (s *Service) GetService(ctx context.Context, id string) (*MedicalService, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateService(ctx context.Context, id string, req UpdateServiceRequest) (*MedicalService, error) {
	if req.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	svc, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	s.logger.Info("service soft-deleted", zap.String("service_id", id))
	s.invalidate(ctx)
	return nil
}

func (s *Service) ListServices(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[MedicalService], error) {
	params.Validate()
	ctx = cache.WithLogger(ctx, s.logger)

	return cache.GetOrLoad(ctx, s.cache, filter.cacheKey(params.Page, params.Limit), s.cacheTTL,
		func(ctx context.Context) (pagination.Page[MedicalService], error) {
			items, total, err := s.repo.List(ctx, filter, params.Limit, params.CalculateOffset())
			if err != nil {
				return pagination.Page[MedicalService]{}, err
			}
			return pagination.NewPage(items, params, total), nil
		})
}

func (s *Service) ListCategories(ctx context.Context, clinicID string) ([]Category, error) {
	ctx = cache.WithLogger(ctx, s.logger)
	return cache.GetOrLoad(ctx, s.cache, CachePrefix+"categories:"+clinicID, s.cacheTTL,
		func(ctx context.Context) ([]Category, error) {
			return s.repo.ListCategories(ctx, clinicID)
		})
}

func (s *Service) invalidate(ctx context.Context) {
	cache.Invalidate(cache.WithLogger(ctx, s.logger), s.cache, CachePrefix)
}
