package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/cache"
	"go.uber.org/zap/zaptest"
)

func TestPurgeDeletedClinics(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var gotCutoff time.Time
	repo := &mockRepository{
		purgeFunc: func(ctx context.Context, before time.Time) ([]string, error) {
			gotCutoff = before
			return []string{"a", "b"}, nil
		},
	}
	mem := cache.NewMemory(time.Minute)
	_ = mem.Set(context.Background(), CachePrefix+"nearby:x", []byte("[]"), time.Minute)

	svc := NewCleanupService(repo, mem, zaptest.NewLogger(t))
	svc.now = func() time.Time { return now }

	n, err := svc.PurgeDeletedClinics(context.Background(), 0)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 purged clinics, got %d", n)
	}
	if want := now.Add(-RetentionPeriod); !gotCutoff.Equal(want) {
		t.Errorf("Expected cutoff %v, got %v", want, gotCutoff)
	}
	if mem.Len() != 0 {
		t.Error("Expected clinic cache to be cleared after purge")
	}
}

func TestPurgeDeletedClinics_RepositoryError(t *testing.T) {
	repo := &mockRepository{
		purgeFunc: func(ctx context.Context, before time.Time) ([]string, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewCleanupService(repo, nil, zaptest.NewLogger(t))

	if _, err := svc.PurgeDeletedClinics(context.Background(), time.Hour); err == nil {
		t.Fatal("Expected error from repository")
	}
}
