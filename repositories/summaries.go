package repositories

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arxiv-daily/models"
)

type SummaryRepository struct {
	col *mongo.Collection
}

func NewSummaryRepository(db *mongo.Database) *SummaryRepository {
	return &SummaryRepository{col: db.Collection("summaries")}
}

// UpsertByDateAndPaper upserts a summary uniquely identified by
// (processed_date, paper.paper_id), so rerunning a day never duplicates.
func (r *SummaryRepository) UpsertByDateAndPaper(ctx context.Context, s *models.PaperSummary) (*mongo.UpdateResult, error) {
	filter := bson.M{"processed_date": s.ProcessedDate, "paper.paper_id": s.Paper.PaperID}
	update := bson.M{
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
		"$set": bson.M{
			"processed_date":    s.ProcessedDate,
			"paper":             s.Paper,
			"ai_generated_info": s.AI,
		},
	}
	opts := options.Update().SetUpsert(true)
	return r.col.UpdateOne(ctx, filter, update, opts)
}

// FindByDate returns a date's summaries in insertion order.
func (r *SummaryRepository) FindByDate(ctx context.Context, date string) ([]models.PaperSummary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"processed_date": date}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var summaries []models.PaperSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Dates returns the distinct processed dates, ascending.
func (r *SummaryRepository) Dates(ctx context.Context) ([]string, error) {
	raw, err := r.col.Distinct(ctx, "processed_date", bson.M{})
	if err != nil {
		return nil, err
	}

	var dates []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			dates = append(dates, s)
		}
	}
	sort.Strings(dates)
	return dates, nil
}
