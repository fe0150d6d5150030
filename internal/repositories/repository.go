package repositories

import (
	"context"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
)

// ParticipantRepository defines the interface for participant identity operations
type ParticipantRepository interface {
	// FindByIdentity returns the participant for a normalized phone number, or ErrNotFound.
	FindByIdentity(ctx context.Context, phone string) (*models.Participant, error)
	// Create creates the participant if absent and returns the stored record either way.
	Create(ctx context.Context, phone string) (*models.Participant, error)
	// RecordAward writes the played marker. It returns ErrAlreadyRecorded if a marker exists.
	RecordAward(ctx context.Context, participantID string, marker models.AwardMarker) error
}

// PrizeCatalogRepository defines the interface for prize catalog operations.
// Implementations are interchangeable and selected when the application is wired.
type PrizeCatalogRepository interface {
	// LoadAll returns the full catalog in declared order as one snapshot.
	LoadAll(ctx context.Context) ([]*models.Prize, error)
	// WriteCounters writes the counters of one prize. It returns ErrStaleCounter when the
	// stored version no longer matches update.ExpectedVersion.
	WriteCounters(ctx context.Context, prizeRef string, update models.CounterUpdate) error
	// ResetAll sets remaining back to cap for every capped prize.
	ResetAll(ctx context.Context, at time.Time) error
}
