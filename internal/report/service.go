package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/cache"
	"go.uber.org/zap"
)

const CachePrefix = "reports:"

var statuses = []string{"pending", "confirmed", "cancelled", "completed", "no_show"}

// Service computes read-only aggregates. Results are cached for the
// configured TTL and never invalidated, so reports may lag writes by up to
// one TTL.
type Service struct {
	repo     RepositoryInterface
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo RepositoryInterface, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if c == nil {
		c = cache.NewMemory(cacheTTL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: c, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

func (p Period) valid() bool {
	return p.From.Before(p.To) && p.To.Sub(p.From) <= MaxRange
}

func (p Period) key() string {
	return fmt.Sprintf("%d:%d", p.From.Unix(), p.To.Unix())
}

func (s *Service) AppointmentSummary(ctx context.Context, clinicID string, p Period) (*AppointmentSummary, error) {
	if !p.valid() {
		return nil, ErrInvalidPeriod
	}
	key := fmt.Sprintf("%ssummary:%s:%s", CachePrefix, clinicID, p.key())
	return cache.GetOrLoad(cache.WithLogger(ctx, s.logger), s.cache, key, s.cacheTTL,
		func(ctx context.Context) (*AppointmentSummary, error) {
			counts, err := s.repo.CountByStatus(ctx, clinicID, p)
			if err != nil {
				return nil, err
			}
			return summarize(clinicID, p, counts), nil
		})
}

// summarize fills every status and derives the rates. Completion rate is
// completed over all appointments; no-show rate is no-shows over
// appointments that reached their start (completed plus no-show).
func summarize(clinicID string, p Period, counts map[string]int) *AppointmentSummary {
	sum := &AppointmentSummary{Period: p, ClinicID: clinicID, ByStatus: map[string]int{}}
	for _, st := range statuses {
		sum.ByStatus[st] = counts[st]
		sum.Total += counts[st]
	}
	completed, noShow := counts["completed"], counts["no_show"]
	sum.CompletionRate = ratio(completed, sum.Total)
	sum.NoShowRate = ratio(noShow, completed+noShow)
	return sum
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*10000) / 10000
}

func (s *Service) RevenueByClinic(ctx context.Context, p Period) (*RevenueReport, error) {
	if !p.valid() {
		return nil, ErrInvalidPeriod
	}
	key := fmt.Sprintf("%srevenue:%s", CachePrefix, p.key())
	return cache.GetOrLoad(cache.WithLogger(ctx, s.logger), s.cache, key, s.cacheTTL,
		func(ctx context.Context) (*RevenueReport, error) {
			rows, err := s.repo.RevenueByClinic(ctx, p)
			if err != nil {
				return nil, err
			}
			return &RevenueReport{Period: p, Clinics: rows}, nil
		})
}

func (s *Service) TopServices(ctx context.Context, p Period, limit int) (*TopServicesReport, error) {
	if !p.valid() {
		return nil, ErrInvalidPeriod
	}
	if limit <= 0 {
		limit = DefaultTopServices
	}
	if limit > MaxTopServices {
		limit = MaxTopServices
	}
	key := fmt.Sprintf("%stop:%d:%s", CachePrefix, limit, p.key())
	return cache.GetOrLoad(cache.WithLogger(ctx, s.logger), s.cache, key, s.cacheTTL,
		func(ctx context.Context) (*TopServicesReport, error) {
			rows, err := s.repo.TopServices(ctx, p, limit)
			if err != nil {
				return nil, err
			}
			return &TopServicesReport{Period: p, Services: rows}, nil
		})
}

// InventoryValuation is always computed live.
func (s *Service) InventoryValuation(ctx context.Context, clinicID string) (*InventoryValuation, error) {
	return s.repo.InventoryValuation(ctx, clinicID, s.now().UTC())
}
