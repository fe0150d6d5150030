package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const participantsCollection = "participants"

// Compile-time check to ensure ParticipantRepository implements the interface
var _ repositories.ParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository handles MongoDB operations for Participant.
// Documents are keyed by the normalized phone number, which makes creation a single upsert.
type ParticipantRepository struct {
	collection *mongo.Collection
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *mongo.Database) *ParticipantRepository {
	return &ParticipantRepository{
		collection: db.Collection(participantsCollection),
	}
}

// FindByIdentity finds a participant by normalized phone number
func (r *ParticipantRepository) FindByIdentity(ctx context.Context, phone string) (*models.Participant, error) {
	var participant models.Participant
	err := r.collection.FindOne(ctx, bson.M{"_id": phone}).Decode(&participant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, upstream("findParticipant", participantsCollection, err)
	}
	participant.ID = participant.Phone
	return &participant, nil
}

// Create inserts the participant unless it already exists and returns the stored document
func (r *ParticipantRepository) Create(ctx context.Context, phone string) (*models.Participant, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"hasPlayed": false,
			"createdAt": now,
			"updatedAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var participant models.Participant
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": phone}, update, opts).Decode(&participant)
	if err != nil {
		return nil, upstream("createParticipant", participantsCollection, err)
	}
	participant.ID = participant.Phone
	return &participant, nil
}

// RecordAward sets the played marker, only if the participant has not played yet
func (r *ParticipantRepository) RecordAward(ctx context.Context, participantID string, marker models.AwardMarker) error {
	filter := bson.M{
		"_id":       participantID,
		"hasPlayed": bson.M{"$ne": true},
	}
	update := bson.M{
		"$set": bson.M{
			"hasPlayed": true,
			"award":     marker,
			"updatedAt": time.Now().UTC(),
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return upstream("recordAward", participantsCollection, err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrAlreadyRecorded
	}
	return nil
}

func upstream(op, target string, err error) error {
	return &repositories.UpstreamError{Op: op, Target: target, Err: err}
}
