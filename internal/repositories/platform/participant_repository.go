package platform

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
	"github.com/rahulbrandimpetus/wheelspin-backend/pkg/platform"
)

// Customer tags that make up the played marker
const (
	TagPlayed      = "wheel-spun"
	tagPrefixLabel = "wheel-prize:"
	tagPrefixID    = "wheel-prize-id:"
	tagPrefixDate  = "wheel-date:"
	tagPrefixNum   = "wheel-number:"
)

// Compile-time check to ensure ParticipantRepository implements the interface
var _ repositories.ParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository maps participants onto platform customers and
// keeps the played marker as customer tags
type ParticipantRepository struct {
	client *platform.Client
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(client *platform.Client) *ParticipantRepository {
	return &ParticipantRepository{client: client}
}

// FindByIdentity looks up the customer by phone
func (r *ParticipantRepository) FindByIdentity(ctx context.Context, phone string) (*models.Participant, error) {
	customer, err := r.client.FindCustomerByPhone(ctx, phone)
	if err != nil {
		return nil, wrap("findParticipant", "customers", err)
	}
	if customer == nil {
		return nil, repositories.ErrNotFound
	}
	return participantFromCustomer(phone, customer), nil
}

// Create creates the customer. If the platform reports the phone as taken
// (a concurrent create won), the existing customer is returned.
func (r *ParticipantRepository) Create(ctx context.Context, phone string) (*models.Participant, error) {
	customer, err := r.client.CreateCustomer(ctx, phone, nil)
	if errors.Is(err, platform.ErrConflict) {
		return r.FindByIdentity(ctx, phone)
	}
	if err != nil {
		return nil, wrap("createParticipant", "customers", err)
	}
	return participantFromCustomer(phone, customer), nil
}

// RecordAward writes the marker tags. The platform offers no conditional tag write, so
// a concurrent marker is only detected by the engine's identity lock.
func (r *ParticipantRepository) RecordAward(ctx context.Context, participantID string, marker models.AwardMarker) error {
	if err := r.client.AddCustomerTags(ctx, participantID, MarkerTags(marker)); err != nil {
		return wrap("recordAward", "customers/"+participantID+"/tags", err)
	}
	return nil
}

// MarkerTags encodes a marker as customer tags
func MarkerTags(m models.AwardMarker) []string {
	tags := []string{
		TagPlayed,
		tagPrefixLabel + m.Label,
		tagPrefixDate + m.Date,
		tagPrefixNum + strconv.Itoa(m.Number),
	}
	if m.PrizeID != "" {
		tags = append(tags, tagPrefixID+m.PrizeID)
	}
	return tags
}

func participantFromCustomer(phone string, c *platform.Customer) *models.Participant {
	p := &models.Participant{ID: c.ID, Phone: phone}
	var marker models.AwardMarker
	for _, tag := range c.Tags {
		tag = strings.TrimSpace(tag)
		switch {
		case tag == TagPlayed:
			p.HasPlayed = true
		case strings.HasPrefix(tag, tagPrefixID):
			marker.PrizeID = strings.TrimPrefix(tag, tagPrefixID)
		case strings.HasPrefix(tag, tagPrefixLabel):
			marker.Label = strings.TrimPrefix(tag, tagPrefixLabel)
		case strings.HasPrefix(tag, tagPrefixDate):
			marker.Date = strings.TrimPrefix(tag, tagPrefixDate)
		case strings.HasPrefix(tag, tagPrefixNum):
			marker.Number, _ = strconv.Atoi(strings.TrimPrefix(tag, tagPrefixNum))
		}
	}
	if p.HasPlayed {
		p.Award = &marker
	}
	return p
}

func wrap(op, target string, err error) error {
	var apiErr *platform.APIError
	if errors.As(err, &apiErr) {
		return &repositories.UpstreamError{Op: op, Target: target, Status: apiErr.Status, Err: err}
	}
	return &repositories.UpstreamError{Op: op, Target: target, Err: err}
}
