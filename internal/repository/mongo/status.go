package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

// statusDocument использует id инцидента как _id: один статус на инцидент
type statusDocument struct {
	IncidentID    string    `bson:"_id"`
	StatusID      string    `bson:"status_id"`
	Processed     bool      `bson:"processed"`
	Success       bool      `bson:"success"`
	Error         string    `bson:"error,omitempty"`
	UsersInArea   int       `bson:"users_in_area"`
	UsersEligible int       `bson:"users_eligible"`
	UsersNotified int       `bson:"users_notified"`
	Location      string    `bson:"location"`
	Categories    []string  `bson:"categories"`
	ProcessedAt   time.Time `bson:"processed_at"`
}

func (d statusDocument) toModel() *models.IncidentProcessingStatus {
	return &models.IncidentProcessingStatus{
		ID:            parseID(d.StatusID),
		IncidentID:    d.IncidentID,
		Processed:     d.Processed,
		Success:       d.Success,
		Error:         d.Error,
		UsersInArea:   d.UsersInArea,
		UsersEligible: d.UsersEligible,
		UsersNotified: d.UsersNotified,
		Location:      d.Location,
		Categories:    d.Categories,
		ProcessedAt:   d.ProcessedAt,
	}
}

type StatusRepository struct {
	collection *mongo.Collection
}

func NewStatusRepository(db *mongo.Database) service.StatusRepository {
	return &StatusRepository{
		collection: db.Collection(statusesCollection),
	}
}

func (r *StatusRepository) IsProcessed(ctx context.Context, incidentID string) (bool, error) {
	var doc statusDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": incidentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check incident status: %w", err)
	}
	return doc.Processed, nil
}

func (r *StatusRepository) SaveStatus(ctx context.Context, status *models.IncidentProcessingStatus) error {
	doc := statusDocument{
		IncidentID:    status.IncidentID,
		StatusID:      status.ID.String(),
		Processed:     status.Processed,
		Success:       status.Success,
		Error:         status.Error,
		UsersInArea:   status.UsersInArea,
		UsersEligible: status.UsersEligible,
		UsersNotified: status.UsersNotified,
		Location:      status.Location,
		Categories:    status.Categories,
		ProcessedAt:   status.ProcessedAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": status.IncidentID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save incident status: %w", err)
	}
	return nil
}

func (r *StatusRepository) ListStatusesSince(ctx context.Context, since time.Time, limit int) ([]*models.IncidentProcessingStatus, error) {
	filter := bson.M{"processed_at": bson.M{"$gte": since}}
	opts := options.Find().SetSort(bson.D{{Key: "processed_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list incident statuses: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []statusDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode incident statuses: %w", err)
	}

	statuses := make([]*models.IncidentProcessingStatus, 0, len(docs))
	for _, doc := range docs {
		statuses = append(statuses, doc.toModel())
	}
	return statuses, nil
}
