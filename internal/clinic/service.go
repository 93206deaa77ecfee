package clinic

import (
	"context"
	"fmt"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/cache"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/geo"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"go.uber.org/zap"
)

// CachePrefix namespaces every cached clinic read.
const CachePrefix = "clinics:"

// MetricsRecorder receives clinic operation counts.
type MetricsRecorder interface {
	RecordClinicOperation(ctx context.Context, operation string)
}

type Service struct {
	repo      RepositoryInterface
	cache     cache.Cache
	cacheTTL  time.Duration
	publisher messaging.PublisherInterface
	metrics   MetricsRecorder
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(
	repo RepositoryInterface,
	c cache.Cache,
	cacheTTL time.Duration,
	publisher messaging.PublisherInterface,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *Service {
	if c == nil {
		c = cache.NewMemory(cacheTTL)
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		cache:     c,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) CreateClinic(ctx context.Context, req CreateClinicRequest) (*Clinic, error) {
	if req.Latitude == nil || req.Longitude == nil ||
		!(geo.Point{Lat: *req.Latitude, Lng: *req.Longitude}).Valid() {
		return nil, ErrInvalidLocation
	}

	c, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("clinic created", zap.String("clinic_id", c.ID), zap.String("city", c.City))
	s.afterWrite(ctx, "create", messaging.EventClinicCreated, c)
	return c, nil
}

func (s *Service) GetClinic(ctx context.Context, id string) (*Clinic, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest) (*Clinic, error) {
	if req.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	if req.Latitude != nil && !(geo.Point{Lat: *req.Latitude}).Valid() {
		return nil, ErrInvalidLocation
	}
	if req.Longitude != nil && !(geo.Point{Lng: *req.Longitude}).Valid() {
		return nil, ErrInvalidLocation
	}

	c, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "update", messaging.EventClinicUpdated, c)
	return c, nil
}

// DeleteClinic soft-deletes a clinic. Clinics with upcoming pending or
// confirmed appointments are refused.
func (s *Service) DeleteClinic(ctx context.Context, id string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	busy, err := s.repo.HasActiveAppointments(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return ErrClinicInUse
	}

	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return err
	}

	c.IsActive = false
	s.logger.Info("clinic soft-deleted", zap.String("clinic_id", id))
	s.afterWrite(ctx, "delete", messaging.EventClinicDeleted, c)
	return nil
}

func (s *Service) ListClinics(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[Clinic], error) {
	params.Validate()

	clinics, total, err := s.repo.List(ctx, filter, params.Limit, params.CalculateOffset())
	if err != nil {
		return pagination.Page[Clinic]{}, fmt.Errorf("failed to list clinics: %w", err)
	}
	return pagination.NewPage(clinics, params, total), nil
}

// FindNearby returns active clinics within the radius, nearest first.
// Results are cached by coordinates rounded to roughly 100 m.
func (s *Service) FindNearby(ctx context.Context, q NearbyQuery) ([]NearbyClinic, error) {
	center := geo.Point{Lat: q.Lat, Lng: q.Lng}
	if !center.Valid() {
		return nil, ErrInvalidLocation
	}
	q = q.normalize()

	key := fmt.Sprintf("%snearby:%.3f:%.3f:%.1f:%d", CachePrefix, q.Lat, q.Lng, q.RadiusKm, q.Limit)
	ctx = cache.WithLogger(ctx, s.logger)

	return cache.GetOrLoad(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) ([]NearbyClinic, error) {
		return s.repo.FindNearby(ctx, center, q.RadiusKm, q.Limit)
	})
}

func (s *Service) afterWrite(ctx context.Context, operation, routingKey string, c *Clinic) {
	cache.Invalidate(cache.WithLogger(ctx, s.logger), s.cache, CachePrefix)

	if s.metrics != nil {
		s.metrics.RecordClinicOperation(ctx, operation)
	}

	messaging.PublishBestEffort(ctx, s.publisher, s.logger, routingKey, messaging.ClinicEvent{
		BaseEvent: messaging.NewBaseEvent(routingKey),
		Data: messaging.ClinicEventData{
			ClinicID:  c.ID,
			Name:      c.Name,
			City:      c.City,
			IsActive:  c.IsActive,
			ChangedAt: s.now().UTC(),
		},
	})
}
