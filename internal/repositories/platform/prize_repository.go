package platform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/utils"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/platform"
)

// PageSize is the largest catalog the platform returns in one call
const PageSize = 250

// Metaobject field keys of a prize record
const (
	fieldLabel            = "label"
	fieldPercentage       = "percentage"
	fieldCap              = "cap"
	fieldRemaining        = "remaining"
	fieldTotalDistributed = "total_distributed"
	fieldFallback         = "fallback"
	fieldVersion          = "version"
	fieldUpdatedAt        = "updated_at"
)

// Compile-time check to ensure PrizeRepository implements the interface
var _ repositories.PrizeCatalogRepository = (*PrizeRepository)(nil)

// PrizeRepository stores each prize as a platform metaobject.
// Counter writes send the read version as If-Match; platforms that ignore the header
// degrade to last-writer-wins.
type PrizeRepository struct {
	client     *platform.Client
	objectType string
}

// NewPrizeRepository creates a new PrizeRepository for the given metaobject type
func NewPrizeRepository(client *platform.Client, objectType string) *PrizeRepository {
	return &PrizeRepository{client: client, objectType: objectType}
}

// LoadAll reads the catalog in one page
func (r *PrizeRepository) LoadAll(ctx context.Context) ([]*models.Prize, error) {
	objects, err := r.client.ListMetaobjects(ctx, r.objectType, PageSize)
	if err != nil {
		return nil, wrap("loadAll", "metaobjects/"+r.objectType, err)
	}
	prizes := make([]*models.Prize, 0, len(objects))
	for i := range objects {
		p, err := prizeFromMetaobject(&objects[i], i)
		if err != nil {
			return nil, err
		}
		prizes = append(prizes, p)
	}
	return prizes, nil
}

// WriteCounters writes the counters of one prize guarded by its version
func (r *PrizeRepository) WriteCounters(ctx context.Context, prizeRef string, update models.CounterUpdate) error {
	fields := map[string]string{
		fieldTotalDistributed: strconv.Itoa(update.TotalDistributed),
		fieldVersion:          strconv.FormatInt(update.ExpectedVersion+1, 10),
		fieldUpdatedAt:        update.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if update.Remaining != nil {
		fields[fieldRemaining] = strconv.Itoa(*update.Remaining)
	}
	err := r.client.UpdateMetaobject(ctx, prizeRef, fields, strconv.FormatInt(update.ExpectedVersion, 10))
	if errors.Is(err, platform.ErrPreconditionFailed) {
		return repositories.ErrStaleCounter
	}
	if err != nil {
		return wrap("writeCounters", "metaobjects/"+prizeRef, err)
	}
	return nil
}

// ResetAll rewrites remaining=cap on every capped prize. Writes are unconditional.
func (r *PrizeRepository) ResetAll(ctx context.Context, at time.Time) error {
	prizes, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	for _, p := range prizes {
		if p.Cap == nil {
			continue
		}
		fields := map[string]string{
			fieldRemaining: strconv.Itoa(*p.Cap),
			fieldVersion:   strconv.FormatInt(p.Version+1, 10),
			fieldUpdatedAt: at.UTC().Format(time.RFC3339),
		}
		if err := r.client.UpdateMetaobject(ctx, p.Ref, fields, ""); err != nil {
			return wrap("resetAll", "metaobjects/"+p.Ref, err)
		}
	}
	return nil
}

func prizeFromMetaobject(m *platform.Metaobject, position int) (*models.Prize, error) {
	malformed := func(field string) error {
		return fmt.Errorf("%w: metaobject %s: field %q", repositories.ErrMalformed, m.ID, field)
	}

	p := &models.Prize{
		ID:        m.Handle,
		Ref:       m.ID,
		Label:     strings.TrimSpace(m.Fields[fieldLabel]),
		Position:  position,
		UpdatedAt: m.UpdatedAt,
	}
	if p.ID == "" {
		p.ID = m.ID
	}

	pct, err := strconv.ParseFloat(strings.TrimSpace(m.Fields[fieldPercentage]), 64)
	if err != nil {
		return nil, malformed(fieldPercentage)
	}
	p.Weight = utils.NormalizeWeight(pct)

	if p.Cap, err = optionalInt(m.Fields[fieldCap]); err != nil {
		return nil, malformed(fieldCap)
	}
	if p.Remaining, err = optionalInt(m.Fields[fieldRemaining]); err != nil {
		return nil, malformed(fieldRemaining)
	}
	if p.Cap != nil && p.Remaining == nil {
		// A freshly defined capped prize starts full.
		p.Remaining = models.IntPtr(*p.Cap)
	}

	if total, err := optionalInt(m.Fields[fieldTotalDistributed]); err != nil {
		return nil, malformed(fieldTotalDistributed)
	} else if total != nil {
		p.TotalDistributed = *total
	}
	if v := strings.TrimSpace(m.Fields[fieldVersion]); v != "" {
		if p.Version, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, malformed(fieldVersion)
		}
	}
	p.Fallback = strings.EqualFold(strings.TrimSpace(m.Fields[fieldFallback]), "true")
	return p, nil
}

func optionalInt(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
