package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories/memory"
)

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

var testNow = time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func capped(id, label string, weight float64, capacity, remaining int) *models.Prize {
	return &models.Prize{
		ID:        id,
		Label:     label,
		Weight:    weight,
		Cap:       models.IntPtr(capacity),
		Remaining: models.IntPtr(remaining),
	}
}

func uncapped(id, label string, weight float64) *models.Prize {
	return &models.Prize{ID: id, Label: label, Weight: weight}
}

// defaultCatalog is ordered grand, ten, thanks with weights .1, .4, .5
func defaultCatalog() []*models.Prize {
	thanks := uncapped("thanks", "Thank you", 0.5)
	thanks.Fallback = true
	return []*models.Prize{
		capped("grand", "Grand Prize", 0.1, 1, 1),
		capped("ten", "10% Off", 0.4, 5, 5),
		thanks,
	}
}

// countingCatalog wraps a catalog repository, counts calls and can inject failures
type countingCatalog struct {
	inner repositories.PrizeCatalogRepository

	loads, writes, resets atomic.Int32

	loadErr   error
	staleFor  int32 // Number of initial writes answered with ErrStaleCounter
	alwaysErr error
	override  []*models.Prize
}

func (c *countingCatalog) LoadAll(ctx context.Context) ([]*models.Prize, error) {
	c.loads.Add(1)
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	if c.override != nil {
		return c.override, nil
	}
	return c.inner.LoadAll(ctx)
}

func (c *countingCatalog) WriteCounters(ctx context.Context, ref string, update models.CounterUpdate) error {
	n := c.writes.Add(1)
	if c.alwaysErr != nil {
		return c.alwaysErr
	}
	if n <= c.staleFor {
		return repositories.ErrStaleCounter
	}
	return c.inner.WriteCounters(ctx, ref, update)
}

func (c *countingCatalog) ResetAll(ctx context.Context, at time.Time) error {
	c.resets.Add(1)
	return c.inner.ResetAll(ctx, at)
}

// countingParticipants wraps a participant repository, counts calls and can inject failures
type countingParticipants struct {
	inner *memory.ParticipantRepository

	calls atomic.Int32

	recordErr error
	// beforeRecord runs before RecordAward reaches the inner repository
	beforeRecord func(participantID string)
}

func (p *countingParticipants) FindByIdentity(ctx context.Context, phone string) (*models.Participant, error) {
	p.calls.Add(1)
	return p.inner.FindByIdentity(ctx, phone)
}

func (p *countingParticipants) Create(ctx context.Context, phone string) (*models.Participant, error) {
	p.calls.Add(1)
	return p.inner.Create(ctx, phone)
}

func (p *countingParticipants) RecordAward(ctx context.Context, id string, marker models.AwardMarker) error {
	p.calls.Add(1)
	if p.beforeRecord != nil {
		p.beforeRecord(id)
	}
	if p.recordErr != nil {
		return p.recordErr
	}
	return p.inner.RecordAward(ctx, id, marker)
}

// recordingMirror keeps the last published snapshot
type recordingMirror struct {
	mu        sync.Mutex
	published []models.StatsSnapshot
	err       error
}

func (m *recordingMirror) Publish(_ context.Context, s models.StatsSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, s)
	return nil
}

func (m *recordingMirror) Fetch(context.Context) (*models.StatsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.published) == 0 {
		return nil, errors.New("nothing published")
	}
	last := m.published[len(m.published)-1]
	return &last, nil
}

func (m *recordingMirror) last() (models.StatsSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.published) == 0 {
		return models.StatsSnapshot{}, false
	}
	return m.published[len(m.published)-1], true
}

type fixture struct {
	catalog      *countingCatalog
	participants *countingParticipants
	store        *memory.PrizeRepository
	mirror       *recordingMirror
	spin         *SpinServiceImpl
}

func newFixture(prizes []*models.Prize, rng RandomSource) *fixture {
	store := memory.NewPrizeRepository(prizes)
	f := &fixture{
		store:        store,
		catalog:      &countingCatalog{inner: store},
		participants: &countingParticipants{inner: memory.NewParticipantRepository()},
		mirror:       &recordingMirror{},
	}
	f.spin = NewSpinService(f.participants, f.catalog, NewLocalLocker(), f.mirror, DefaultMaxAttempts).
		WithRandomSource(rng).
		WithClock(fixedClock)
	return f
}

func (f *fixture) prize(id string) *models.Prize {
	prizes, _ := f.store.LoadAll(context.Background())
	for _, p := range prizes {
		if p.ID == id {
			return p
		}
	}
	return nil
}
