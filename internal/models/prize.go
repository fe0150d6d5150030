package models

import (
	"time"
)

// Prize defines a single prize type on the wheel together with its inventory counters
type Prize struct {
	ID       string  `bson:"_id" json:"id"`
	Label    string  `bson:"label" json:"label"`
	Weight   float64 `bson:"weight" json:"weight"`     // Probability mass in [0,1]
	Position int     `bson:"position" json:"position"` // Catalog order

	// Cap is nil for unbounded prizes; Remaining is nil iff Cap is nil.
	Cap              *int `bson:"cap,omitempty" json:"cap,omitempty"`
	Remaining        *int `bson:"remaining,omitempty" json:"remaining,omitempty"`
	TotalDistributed int  `bson:"totalDistributed" json:"totalDistributed"`

	Fallback  bool      `bson:"fallback" json:"fallback"` // Awarded when nothing else is available
	Version   int64     `bson:"version" json:"version"`   // Optimistic concurrency token
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Ref is the backing store handle used to write the counters back.
	Ref string `bson:"-" json:"-"`
}

// IsCapped reports whether the prize has a finite inventory
func (p *Prize) IsCapped() bool {
	return p.Cap != nil
}

// IsAvailable reports whether the prize can still be drawn
func (p *Prize) IsAvailable() bool {
	return p.Remaining == nil || *p.Remaining > 0
}

// CounterUpdate is the write-back applied to one prize after an award
type CounterUpdate struct {
	Remaining        *int
	TotalDistributed int
	UpdatedAt        time.Time
	ExpectedVersion  int64
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
