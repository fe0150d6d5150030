package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
)

// Compile-time check to ensure PrizeRepository implements the interface
var _ repositories.PrizeCatalogRepository = (*PrizeRepository)(nil)

// PrizeRepository holds a fixed catalog declared in configuration and keeps its counters
// in process. Counters do not survive a restart.
type PrizeRepository struct {
	mu     sync.RWMutex
	prizes []*models.Prize
	byRef  map[string]*models.Prize
}

// NewPrizeRepository creates a PrizeRepository seeded with the given catalog
func NewPrizeRepository(prizes []*models.Prize) *PrizeRepository {
	r := &PrizeRepository{
		prizes: make([]*models.Prize, 0, len(prizes)),
		byRef:  make(map[string]*models.Prize, len(prizes)),
	}
	for _, p := range prizes {
		c := clonePrize(p)
		if c.Ref == "" {
			c.Ref = c.ID
		}
		r.prizes = append(r.prizes, c)
		r.byRef[c.Ref] = c
	}
	return r
}

// LoadAll returns a copy of the catalog so callers never share state with the store
func (r *PrizeRepository) LoadAll(ctx context.Context) ([]*models.Prize, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Prize, 0, len(r.prizes))
	for _, p := range r.prizes {
		out = append(out, clonePrize(p))
	}
	return out, nil
}

// WriteCounters applies the update if the version still matches
func (r *PrizeRepository) WriteCounters(ctx context.Context, prizeRef string, update models.CounterUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byRef[prizeRef]
	if !ok {
		return repositories.ErrNotFound
	}
	if p.Version != update.ExpectedVersion {
		return repositories.ErrStaleCounter
	}
	if update.Remaining != nil {
		p.Remaining = models.IntPtr(*update.Remaining)
	}
	p.TotalDistributed = update.TotalDistributed
	p.UpdatedAt = update.UpdatedAt
	p.Version++
	return nil
}

// ResetAll restores remaining to cap for every capped prize
func (r *PrizeRepository) ResetAll(ctx context.Context, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.prizes {
		if p.Cap == nil {
			continue
		}
		p.Remaining = models.IntPtr(*p.Cap)
		p.UpdatedAt = at
		p.Version++
	}
	return nil
}

func clonePrize(p *models.Prize) *models.Prize {
	c := *p
	if p.Cap != nil {
		c.Cap = models.IntPtr(*p.Cap)
	}
	if p.Remaining != nil {
		c.Remaining = models.IntPtr(*p.Remaining)
	}
	return &c
}
