package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"go.uber.org/zap"
)

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	logger    *zap.Logger
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

func (s *Service) CreateProvider(ctx context.Context, req CreateProviderRequest) (*Provider, error) {
	p, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("provider created",
		zap.String("provider_id", p.ID),
		zap.String("clinic_id", p.ClinicID),
		zap.Int("services", len(p.ServiceIDs)))
	return p, nil
}

func (s *Service) GetProvider(ctx context.Context, id string) (*Provider, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateProvider(ctx context.Context, id string, req UpdateProviderRequest) (*Provider, error) {
	if req.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	return s.repo.Update(ctx, id, req)
}

// DeleteProvider soft-deletes a provider without upcoming appointments.
func (s *Service) DeleteProvider(ctx context.Context, id string) error {
	busy, err := s.repo.HasUpcomingAppointments(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return ErrProviderInUse
	}
	if err := s.repo.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	s.logger.Info("provider soft-deleted", zap.String("provider_id", id))
	return nil
}

func (s *Service) ListProviders(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[Provider], error) {
	params.Validate()
	providers, total, err := s.repo.List(ctx, filter, params.Limit, params.CalculateOffset())
	if err != nil {
		return pagination.Page[Provider]{}, fmt.Errorf("failed to list providers: %w", err)
	}
	return pagination.NewPage(providers, params, total), nil
}

// SetServices replaces the services a provider offers.
func (s *Service) SetServices(ctx context.Context, providerID string, serviceIDs []string) (*Provider, error) {
	if err := s.repo.ReplaceServices(ctx, providerID, serviceIDs); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, providerID)
}

// SetWorkingHours validates and replaces the provider's weekly schedule.
func (s *Service) SetWorkingHours(ctx context.Context, providerID string, hours []WorkingHoursInput) ([]WorkingHours, error) {
	windows, err := NormalizeWindows(hours)
	if err != nil {
		return nil, err
	}

	clinicID, err := s.repo.ReplaceWorkingHours(ctx, providerID, windows)
	if err != nil {
		return nil, err
	}

	s.logger.Info("working hours replaced", zap.String("provider_id", providerID), zap.Int("windows", len(windows)))
	messaging.PublishBestEffort(ctx, s.publisher, s.logger, messaging.EventProviderScheduleUpdated,
		messaging.ProviderScheduleEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventProviderScheduleUpdated),
			Data: messaging.ProviderScheduleData{
				ProviderID: providerID,
				ClinicID:   clinicID,
				Windows:    len(windows),
				ChangedAt:  time.Now().UTC(),
			},
		})

	return s.repo.GetWorkingHours(ctx, providerID)
}

func (s *Service) GetWorkingHours(ctx context.Context, providerID string) ([]WorkingHours, error) {
	return s.repo.GetWorkingHours(ctx, providerID)
}
