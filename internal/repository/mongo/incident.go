package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

type IncidentRepository struct {
	collection *mongo.Collection
}

func NewIncidentRepository(db *mongo.Database) service.IncidentRepository {
	return &IncidentRepository{
		collection: db.Collection(incidentsCollection),
	}
}

func (r *IncidentRepository) ListObservedSince(ctx context.Context, since time.Time) ([]*models.Incident, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": since.UnixMilli()}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer cursor.Close(ctx)

	incidents := make([]*models.Incident, 0)
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, fmt.Errorf("failed to decode incidents: %w", err)
	}
	return incidents, nil
}
