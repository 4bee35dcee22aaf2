package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arxiv-daily/dedup"
)

// SeenPaperRepository is the mongo-backed dedup.Store: one document per
// seen paper identifier.
type SeenPaperRepository struct {
	col *mongo.Collection
}

func NewSeenPaperRepository(db *mongo.Database) *SeenPaperRepository {
	return &SeenPaperRepository{col: db.Collection("seen_papers")}
}

func (r *SeenPaperRepository) Load(ctx context.Context) (dedup.SeenSet, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	seen := dedup.NewSeenSet()
	for cursor.Next(ctx) {
		var doc struct {
			PaperID string `bson:"paper_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		seen.Add(doc.PaperID)
	}
	return seen, cursor.Err()
}

// Save upserts every identifier. Existing documents keep their original
// seen_at; removal is not supported, the seen set only grows.
func (r *SeenPaperRepository) Save(ctx context.Context, seen dedup.SeenSet) error {
	now := time.Now().UTC()
	opts := options.Update().SetUpsert(true)
	for _, id := range seen.IDs() {
		filter := bson.M{"paper_id": id}
		update := bson.M{"$setOnInsert": bson.M{"paper_id": id, "seen_at": now}}
		if _, err := r.col.UpdateOne(ctx, filter, update, opts); err != nil {
			return err
		}
	}
	return nil
}
