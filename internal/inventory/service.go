package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"go.uber.org/zap"
)

type MetricsRecorder interface {
	RecordInventoryAdjustment(ctx context.Context, delta int)
	RecordLowStock(ctx context.Context, clinicID string)
}

type noopMetrics struct{}

func (noopMetrics) RecordInventoryAdjustment(context.Context, int) {}
func (noopMetrics) RecordLowStock(context.Context, string)         {}

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	metrics   MetricsRecorder
	logger    *zap.Logger
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, metrics MetricsRecorder, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, publisher: publisher, metrics: metrics, logger: logger}
}

func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	item, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("inventory item created",
		zap.String("item_id", item.ID),
		zap.String("clinic_id", item.ClinicID),
		zap.String("sku", item.SKU))
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*Item, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListItems(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[Item], error) {
	params.Validate()
	items, total, err := s.repo.List(ctx, filter, params.Limit, params.CalculateOffset())
	if err != nil {
		return pagination.Page[Item]{}, fmt.Errorf("failed to list inventory: %w", err)
	}
	return pagination.NewPage(items, params, total), nil
}

func (s *Service) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*Item, error) {
	if req.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("inventory item deleted", zap.String("item_id", id))
	return nil
}

// AdjustStock adds delta to the item's quantity. Crossing the reorder level
// downward publishes inventory.low_stock once.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int, reason string) (*Adjustment, error) {
	adj, err := s.repo.Adjust(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	item := adj.Item

	s.metrics.RecordInventoryAdjustment(ctx, delta)
	s.logger.Info("stock adjusted",
		zap.String("item_id", item.ID),
		zap.Int("delta", delta),
		zap.Int("quantity", item.Quantity),
		zap.String("reason", reason))

	if adj.CrossedReorderLevel() {
		s.metrics.RecordLowStock(ctx, item.ClinicID)
		s.logger.Warn("item reached reorder level",
			zap.String("item_id", item.ID),
			zap.Int("quantity", item.Quantity),
			zap.Int("reorder_level", item.ReorderLevel))

		event := messaging.LowStockEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventInventoryLowStock),
			Data: messaging.LowStockData{
				ItemID:       item.ID,
				ClinicID:     item.ClinicID,
				Name:         item.Name,
				SKU:          item.SKU,
				Quantity:     item.Quantity,
				ReorderLevel: item.ReorderLevel,
				DetectedAt:   time.Now().UTC(),
			},
		}
		messaging.PublishBestEffort(ctx, s.publisher, s.logger, messaging.EventInventoryLowStock, event)
	}
	return adj, nil
}

func (s *Service) ListLowStock(ctx context.Context, clinicID string) ([]Item, error) {
	return s.repo.ListLowStock(ctx, clinicID)
}
