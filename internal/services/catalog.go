package services

import (
	"fmt"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
)

// ValidateCatalog checks a snapshot before it is used for a draw
func ValidateCatalog(catalog []*models.Prize) error {
	if len(catalog) == 0 {
		return fmt.Errorf("%w: prize catalog is empty", ErrConfiguration)
	}

	seen := make(map[string]struct{}, len(catalog))
	for i, p := range catalog {
		if p == nil {
			return fmt.Errorf("%w: prize #%d is missing", ErrConfiguration, i)
		}
		if p.ID == "" {
			return fmt.Errorf("%w: prize #%d has no id", ErrConfiguration, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate prize id %q", ErrConfiguration, p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Label == "" {
			return fmt.Errorf("%w: prize %q has no label", ErrConfiguration, p.ID)
		}
		if p.Weight < 0 || p.Weight > 1 {
			return fmt.Errorf("%w: prize %q weight %v outside [0,1]", ErrConfiguration, p.ID, p.Weight)
		}
		if p.TotalDistributed < 0 {
			return fmt.Errorf("%w: prize %q has negative totalDistributed", ErrConfiguration, p.ID)
		}
		if (p.Cap == nil) != (p.Remaining == nil) {
			return fmt.Errorf("%w: prize %q must set cap and remaining together", ErrConfiguration, p.ID)
		}
		if p.Cap != nil {
			if *p.Cap < 0 {
				return fmt.Errorf("%w: prize %q has negative cap", ErrConfiguration, p.ID)
			}
			if *p.Remaining < 0 || *p.Remaining > *p.Cap {
				return fmt.Errorf("%w: prize %q remaining %d outside [0,%d]", ErrConfiguration, p.ID, *p.Remaining, *p.Cap)
			}
		}
	}
	return nil
}

// applyAward computes the counter write for one award of p
func applyAward(p *models.Prize, at time.Time) models.CounterUpdate {
	update := models.CounterUpdate{
		TotalDistributed: p.TotalDistributed + 1,
		UpdatedAt:        at,
		ExpectedVersion:  p.Version,
	}
	if p.Remaining != nil {
		remaining := *p.Remaining - 1
		if remaining < 0 {
			remaining = 0
		}
		update.Remaining = &remaining
	}
	return update
}
