package models

import (
	"time"
)

// PrizeStat is one row of the admin statistics view
type PrizeStat struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	Cap              *int   `json:"cap"`
	Remaining        *int   `json:"remaining"`
	TotalDistributed int    `json:"totalDistributed"`
	IsAvailable      bool   `json:"isAvailable"`
}

// StatsSnapshot is the document published to the display mirror
type StatsSnapshot struct {
	GeneratedAt time.Time   `json:"generatedAt"`
	Prizes      []PrizeStat `json:"prizes"`
}

// NewPrizeStat builds the statistics row for a prize
func NewPrizeStat(p *Prize) PrizeStat {
	return PrizeStat{
		ID:               p.ID,
		Label:            p.Label,
		Cap:              p.Cap,
		Remaining:        p.Remaining,
		TotalDistributed: p.TotalDistributed,
		IsAvailable:      p.IsAvailable(),
	}
}
