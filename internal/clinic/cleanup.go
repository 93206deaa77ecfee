package clinic

import (
	"context"
	"fmt"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/cache"
	"go.uber.org/zap"
)

// RetentionPeriod is how long soft-deleted clinics are kept (3 years).
const RetentionPeriod = 3 * 365 * 24 * time.Hour

// CleanupService permanently removes clinics whose retention has expired.
type CleanupService struct {
	repo   RepositoryInterface
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewCleanupService(repo RepositoryInterface, c cache.Cache, logger *zap.Logger) *CleanupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupService{repo: repo, cache: c, logger: logger, now: time.Now}
}

// PurgeDeletedClinics hard-deletes clinics soft-deleted more than retention
// ago. Clinics still holding pending or confirmed appointments are skipped.
func (s *CleanupService) PurgeDeletedClinics(ctx context.Context, retention time.Duration) (int, error) {
	if retention <= 0 {
		retention = RetentionPeriod
	}
	cutoff := s.now().UTC().Add(-retention)
	s.logger.Info("purging soft-deleted clinics", zap.Time("deleted_before", cutoff))

	ids, err := s.repo.PurgeDeleted(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge clinics: %w", err)
	}

	if len(ids) == 0 {
		s.logger.Info("no expired clinics found for cleanup")
		return 0, nil
	}

	if s.cache != nil {
		cache.Invalidate(cache.WithLogger(ctx, s.logger), s.cache, CachePrefix)
	}
	s.logger.Info("purged expired clinics", zap.Int("count", len(ids)), zap.Strings("clinic_ids", ids))
	return len(ids), nil
}
