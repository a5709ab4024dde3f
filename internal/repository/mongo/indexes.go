// Package mongo реализует порты хранилища движка уведомлений поверх MongoDB.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	incidentsCollection     = "summarized_data"
	subscriptionsCollection = "users"
	notificationsCollection = "notifications_sent"
	statusesCollection      = "incident_notification_status"
)

// EnsureIndexes создает индексы, на которые опираются запросы движка.
// Частичный уникальный индекс с $in требует MongoDB 6.0+.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		incidentsCollection: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		subscriptionsCollection: {
			{Keys: bson.D{{Key: geohashField, Value: 1}}},
		},
		notificationsCollection: {
			{
				// Не более одной активной или успешной записи на пару (user, incident)
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "incident_id", Value: 1},
				},
				Options: options.Index().
					SetName("uq_active_notification").
					SetUnique(true).
					SetPartialFilterExpression(bson.D{
						{Key: "outcome", Value: bson.D{{Key: "$in", Value: bson.A{"pending", "sent"}}}},
					}),
			},
			{
				Keys: bson.D{
					{Key: "outcome", Value: 1},
					{Key: "created_at", Value: -1},
				},
			},
		},
		statusesCollection: {
			{Keys: bson.D{{Key: "processed_at", Value: -1}}},
		},
	}

	for collection, idx := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}
	return nil
}
