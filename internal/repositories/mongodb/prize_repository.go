package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const prizesCollection = "prizes"

// Compile-time check to ensure PrizeRepository implements the interface
var _ repositories.PrizeCatalogRepository = (*PrizeRepository)(nil)

// PrizeRepository keeps the whole prize catalog as documents in MongoDB.
// Counter writes are guarded by the document version; there is no multi-document transaction.
type PrizeRepository struct {
	collection *mongo.Collection
}

// NewPrizeRepository creates a new PrizeRepository
func NewPrizeRepository(db *mongo.Database) *PrizeRepository {
	return &PrizeRepository{
		collection: db.Collection(prizesCollection),
	}
}

// LoadAll returns every prize ordered by catalog position
func (r *PrizeRepository) LoadAll(ctx context.Context) ([]*models.Prize, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, upstream("loadAll", prizesCollection, err)
	}
	defer cursor.Close(ctx)

	var prizes []*models.Prize
	if err = cursor.All(ctx, &prizes); err != nil {
		return nil, fmt.Errorf("%w: decode prizes: %v", repositories.ErrMalformed, err)
	}
	if prizes == nil {
		prizes = []*models.Prize{}
	}
	for _, p := range prizes {
		p.Ref = p.ID
	}
	return prizes, nil
}

// WriteCounters writes remaining/totalDistributed if the version still matches
func (r *PrizeRepository) WriteCounters(ctx context.Context, prizeRef string, update models.CounterUpdate) error {
	set := bson.M{
		"totalDistributed": update.TotalDistributed,
		"updatedAt":        update.UpdatedAt,
	}
	if update.Remaining != nil {
		set["remaining"] = *update.Remaining
	}
	filter := bson.M{"_id": prizeRef, "version": update.ExpectedVersion}
	if update.ExpectedVersion == 0 {
		// Documents seeded by hand may not carry a version yet.
		filter = bson.M{"_id": prizeRef, "$or": bson.A{
			bson.M{"version": 0},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return upstream("writeCounters", prizesCollection, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": prizeRef})
	if err != nil {
		return upstream("writeCounters", prizesCollection, err)
	}
	if count == 0 {
		return repositories.ErrNotFound
	}
	return repositories.ErrStaleCounter
}

// ResetAll copies cap into remaining for every capped prize and bumps its version
func (r *PrizeRepository) ResetAll(ctx context.Context, at time.Time) error {
	filter := bson.M{"cap": bson.M{"$type": "number"}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "remaining", Value: "$cap"},
			{Key: "updatedAt", Value: at},
			{Key: "version", Value: bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$version", 0}}, 1}}},
		}}},
	}
	if _, err := r.collection.UpdateMany(ctx, filter, pipeline); err != nil {
		return upstream("resetAll", prizesCollection, err)
	}
	return nil
}

// Upsert creates or replaces a prize definition. Used by the catalog import command.
func (r *PrizeRepository) Upsert(ctx context.Context, prize *models.Prize) error {
	prize.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": prize.ID}, prize, opts)
	if err != nil {
		return upstream("upsertPrize", prizesCollection, err)
	}
	return nil
}
