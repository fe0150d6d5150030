package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
)

// Compile-time check to ensure ParticipantRepository implements the interface
var _ repositories.ParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository keeps participants in a map keyed by phone number
type ParticipantRepository struct {
	mu           sync.RWMutex
	participants map[string]*models.Participant
}

// NewParticipantRepository creates an empty ParticipantRepository
func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{
		participants: make(map[string]*models.Participant),
	}
}

// FindByIdentity returns a copy of the participant or ErrNotFound
func (r *ParticipantRepository) FindByIdentity(ctx context.Context, phone string) (*models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[phone]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneParticipant(p), nil
}

// Create adds the participant if it does not exist yet
func (r *ParticipantRepository) Create(ctx context.Context, phone string) (*models.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.participants[phone]; ok {
		return cloneParticipant(p), nil
	}
	now := time.Now().UTC()
	p := &models.Participant{
		ID:        phone,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.participants[phone] = p
	return cloneParticipant(p), nil
}

// RecordAward stores the marker once
func (r *ParticipantRepository) RecordAward(ctx context.Context, participantID string, marker models.AwardMarker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return repositories.ErrNotFound
	}
	if p.HasPlayed {
		return repositories.ErrAlreadyRecorded
	}
	m := marker
	p.HasPlayed = true
	p.Award = &m
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneParticipant(p *models.Participant) *models.Participant {
	c := *p
	if p.Award != nil {
		m := *p.Award
		c.Award = &m
	}
	return &c
}
