package mongodb

import (
	"context"
	"fmt"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Classification Sink
// =============================================================================

const collectionClassifications = "classifications"

// ClassificationSink stores classification records as documents keyed by record ID.
type ClassificationSink struct {
	collection *mongo.Collection
}

func NewClassificationSink(db *mongo.Database) *ClassificationSink {
	return &ClassificationSink{collection: db.Collection(collectionClassifications)}
}

func (s *ClassificationSink) Name() string { return "mongodb" }

// EnsureIndexes creates indexes used by dashboards.
func (s *ClassificationSink) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "result.category", Value: 1}, {Key: "result.classified_at", Value: -1}}},
		{Keys: bson.D{{Key: "message.sender", Value: 1}}},
		{Keys: bson.D{{Key: "message.account", Value: 1}}},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Save upserts the record document.
func (s *ClassificationSink) Save(ctx context.Context, rec *domain.ClassificationRecord) error {
	if rec == nil || rec.Result == nil {
		return fmt.Errorf("incomplete classification record")
	}
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": rec.ID},
		rec,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}
	return nil
}

// CountByCategory aggregates stored records per category.
func (s *ClassificationSink) CountByCategory(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$result.category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate classifications: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int)
	for cursor.Next(ctx) {
		var row struct {
			Category string `bson:"_id"`
			Count    int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Category] = row.Count
	}
	return counts, cursor.Err()
}

var _ out.ResultSink = (*ClassificationSink)(nil)
var _ out.ClassificationCounter = (*ClassificationSink)(nil)
