package services

import (
	"math/rand"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
)

// RandomSource yields uniform values in [0,1)
type RandomSource interface {
	Float64() float64
}

type mathRandSource struct{}

func (mathRandSource) Float64() float64 { return rand.Float64() }

// NewRandomSource returns the default, statistically uniform, non-cryptographic source
func NewRandomSource() RandomSource {
	return mathRandSource{}
}

// AvailablePrizes returns the prizes that can still be drawn, keeping catalog order
func AvailablePrizes(catalog []*models.Prize) []*models.Prize {
	available := make([]*models.Prize, 0, len(catalog))
	for _, p := range catalog {
		if p.IsAvailable() {
			available = append(available, p)
		}
	}
	return available
}

// FallbackPrize picks the prize awarded when nothing can be drawn: the first prize flagged
// as fallback, else the first uncapped prize, else the last catalog entry.
func FallbackPrize(catalog []*models.Prize) *models.Prize {
	if len(catalog) == 0 {
		return nil
	}
	for _, p := range catalog {
		if p.Fallback {
			return p
		}
	}
	for _, p := range catalog {
		if !p.IsCapped() {
			return p
		}
	}
	return catalog[len(catalog)-1]
}

// Draw performs one weighted selection. The total weight is summed over the available
// prizes only, so the mass of a depleted prize is spread over the rest on every draw.
// The second result reports whether the fallback branch was taken.
func Draw(catalog []*models.Prize, rng RandomSource) (*models.Prize, bool) {
	available := AvailablePrizes(catalog)

	total := 0.0
	for _, p := range available {
		total += p.Weight
	}
	if len(available) == 0 || total <= 0 {
		return FallbackPrize(catalog), true
	}

	r := rng.Float64() * total
	cumulative := 0.0
	var last *models.Prize
	for _, p := range available {
		if p.Weight <= 0 {
			continue
		}
		last = p
		cumulative += p.Weight
		if cumulative >= r {
			return p, false
		}
	}
	// Rounding left r above the final cumulative sum.
	return last, false
}
