package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/metrics"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/logger"
)

// StatsMirror is a secondary, display-only copy of the prize statistics.
// It is written after the primary store and may drift from it.
type StatsMirror interface {
	Publish(ctx context.Context, snapshot models.StatsSnapshot) error
	Fetch(ctx context.Context) (*models.StatsSnapshot, error)
}

// NoopMirror is used when no mirror is configured
type NoopMirror struct{}

func (NoopMirror) Publish(context.Context, models.StatsSnapshot) error { return nil }

func (NoopMirror) Fetch(context.Context) (*models.StatsSnapshot, error) {
	return nil, errors.New("mirror disabled")
}

const mirrorTimeout = 3 * time.Second

func buildSnapshot(catalog []*models.Prize, at time.Time) models.StatsSnapshot {
	stats := make([]models.PrizeStat, 0, len(catalog))
	for _, p := range catalog {
		stats = append(stats, models.NewPrizeStat(p))
	}
	return models.StatsSnapshot{GeneratedAt: at, Prizes: stats}
}

// publishStats writes the snapshot to the mirror. Failures are logged and counted; they
// never fail the primary operation.
func publishStats(ctx context.Context, mirror StatsMirror, op string, snapshot models.StatsSnapshot) {
	if mirror == nil {
		return
	}
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()
	if err := mirror.Publish(mctx, snapshot); err != nil {
		metrics.RecordMirrorFailure(op)
		logger.WarnCtx(ctx, "Stats mirror publish failed; mirror now lags the primary store",
			zap.String("op", op), zap.Error(err))
	}
}

// DriftAuditor periodically compares the mirror with the primary catalog and reports
// differences. It never rewrites either side.
type DriftAuditor struct {
	catalog   repositories.PrizeCatalogRepository
	mirror    StatsMirror
	interval  time.Duration
	scheduler gocron.Scheduler
}

// NewDriftAuditor creates a DriftAuditor
func NewDriftAuditor(catalog repositories.PrizeCatalogRepository, mirror StatsMirror, interval time.Duration) *DriftAuditor {
	return &DriftAuditor{catalog: catalog, mirror: mirror, interval: interval}
}

// Audit runs one comparison and returns the number of drifted prizes
func (a *DriftAuditor) Audit(ctx context.Context) (int, error) {
	primary, err := a.catalog.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	mirrored, err := a.mirror.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]models.PrizeStat, len(mirrored.Prizes))
	for _, s := range mirrored.Prizes {
		byID[s.ID] = s
	}

	drifted := 0
	for _, p := range primary {
		want := models.NewPrizeStat(p)
		got, ok := byID[p.ID]
		if ok && sameCounters(want, got) {
			continue
		}
		drifted++
		logger.Warn("Stats mirror drift detected",
			zap.String("prizeId", p.ID),
			zap.Bool("missingInMirror", !ok),
			zap.Any("primaryRemaining", want.Remaining),
			zap.Any("mirrorRemaining", got.Remaining),
			zap.Int("primaryTotal", want.TotalDistributed),
			zap.Int("mirrorTotal", got.TotalDistributed),
			zap.Time("mirrorGeneratedAt", mirrored.GeneratedAt),
		)
	}
	metrics.SetMirrorDrift(drifted)
	return drifted, nil
}

// Start schedules Audit every interval
func (a *DriftAuditor) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(
		gocron.DurationJob(a.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), a.interval)
			defer cancel()
			if _, err := a.Audit(ctx); err != nil {
				logger.Warn("Stats mirror audit failed", zap.Error(err))
			}
		}),
	)
	if err != nil {
		_ = s.Shutdown()
		return err
	}
	s.Start()
	a.scheduler = s
	return nil
}

// Stop stops the scheduler
func (a *DriftAuditor) Stop() error {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Shutdown()
}

func sameCounters(a, b models.PrizeStat) bool {
	return a.TotalDistributed == b.TotalDistributed &&
		equalIntPtr(a.Remaining, b.Remaining) &&
		a.IsAvailable == b.IsAvailable
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
