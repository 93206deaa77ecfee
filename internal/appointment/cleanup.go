package appointment

import (
	"context"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/messaging"
	"go.uber.org/zap"
)

// ExpireStalePending cancels pending appointments whose start time has
// passed without confirmation.
func (s *Service) ExpireStalePending(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ExpirePending(ctx, now)
	if err != nil {
		return 0, err
	}
	for i := range expired {
		a := &expired[i]
		s.metrics.RecordAppointmentOperation(ctx, "expire", string(a.Status))
		s.publish(ctx, messaging.EventAppointmentCancelled, a, StatusPending, a.CancellationReason, "")
	}
	if len(expired) > 0 {
		s.logger.Info("expired stale pending appointments", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}
