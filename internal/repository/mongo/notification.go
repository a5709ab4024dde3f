package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

// recordDocument хранит UUID строкой, а не массивом байт
type recordDocument struct {
	ID             string    `bson:"_id"`
	UserID         string    `bson:"user_id"`
	IncidentID     string    `bson:"incident_id"`
	Outcome        string    `bson:"outcome"`
	DistanceMeters float64   `bson:"distance_meters"`
	Error          string    `bson:"error,omitempty"`
	ErrorCode      string    `bson:"error_code,omitempty"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toRecordDocument(record *models.NotificationRecord) recordDocument {
	return recordDocument{
		ID:             record.ID.String(),
		UserID:         record.UserID,
		IncidentID:     record.IncidentID,
		Outcome:        string(record.Outcome),
		DistanceMeters: record.DistanceMeters,
		Error:          record.Error,
		ErrorCode:      record.ErrorCode,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) service.NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection(notificationsCollection),
	}
}

func (r *NotificationRepository) HasSent(ctx context.Context, userID, incidentID string) (bool, error) {
	filter := bson.M{
		"user_id":     userID,
		"incident_id": incidentID,
		"outcome":     string(models.OutcomeSent),
	}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})

	err := r.collection.FindOne(ctx, filter, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check notification record: %w", err)
	}
	return true, nil
}

// Claim вставляет запись pending; ошибка дубликата ключа означает, что пара уже захвачена
func (r *NotificationRepository) Claim(ctx context.Context, record *models.NotificationRecord, staleAfter time.Duration) (bool, error) {
	if staleAfter > 0 {
		filter := bson.M{
			"user_id":     record.UserID,
			"incident_id": record.IncidentID,
			"outcome":     string(models.OutcomePending),
			"updated_at":  bson.M{"$lt": record.CreatedAt.Add(-staleAfter)},
		}
		update := bson.M{"$set": bson.M{
			"outcome":    string(models.OutcomeFailed),
			"error":      "claim expired before completion",
			"error_code": "ClaimExpired",
			"updated_at": record.CreatedAt,
		}}
		if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
			return false, fmt.Errorf("failed to expire stale claim: %w", err)
		}
	}

	if _, err := r.collection.InsertOne(ctx, toRecordDocument(record)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}
	return true, nil
}

func (r *NotificationRepository) Complete(ctx context.Context, record *models.NotificationRecord) error {
	filter := bson.M{
		"_id":     record.ID.String(),
		"outcome": string(models.OutcomePending),
	}
	update := bson.M{"$set": bson.M{
		"outcome":    string(record.Outcome),
		"error":      record.Error,
		"error_code": record.ErrorCode,
		"updated_at": record.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to complete notification record: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("pending notification record %s not found", record.ID)
	}
	return nil
}

func (r *NotificationRepository) CountSentSince(ctx context.Context, since time.Time) (int64, error) {
	filter := bson.M{
		"outcome":    string(models.OutcomeSent),
		"created_at": bson.M{"$gte": since},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count sent notifications: %w", err)
	}
	return count, nil
}

// parseID восстанавливает UUID из строкового _id; некорректное значение даёт нулевой UUID
func parseID(id string) uuid.UUID {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
