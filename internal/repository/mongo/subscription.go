package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

const geohashField = "location.geohash"

// userDocument - документ коллекции users, которую ведет сервис регистрации
type userDocument struct {
	ID            string            `bson:"_id"`
	Location      *userLocation     `bson:"location,omitempty"`
	RadiusKm      float64           `bson:"radius_km"`
	Categories    []string          `bson:"categories"`
	Notifications userNotifications `bson:"notifications"`
	FCMToken      string            `bson:"fcmToken,omitempty"`
}

type userLocation struct {
	Lat     *float64 `bson:"lat"`
	Lng     *float64 `bson:"lng"`
	Geohash string   `bson:"geohash"`
}

type userNotifications struct {
	Enabled    bool               `bson:"enabled"`
	QuietHours *models.QuietHours `bson:"quietHours,omitempty"`
}

func (d *userDocument) toModel() *models.UserSubscription {
	user := &models.UserSubscription{
		ID:                   d.ID,
		RadiusKm:             d.RadiusKm,
		Categories:           d.Categories,
		NotificationsEnabled: d.Notifications.Enabled,
		QuietHours:           d.Notifications.QuietHours,
		DeviceToken:          d.FCMToken,
	}
	if d.Location != nil {
		user.Geohash = d.Location.Geohash
		if d.Location.Lat != nil && d.Location.Lng != nil {
			user.Location = &models.Coordinates{Lat: *d.Location.Lat, Lng: *d.Location.Lng}
		}
	}
	return user
}

type SubscriptionRepository struct {
	collection *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) service.SubscriptionRepository {
	return &SubscriptionRepository{
		collection: db.Collection(subscriptionsCollection),
	}
}

// FindByGeohashRange - строки в BSON сравниваются побайтово, что и нужно для диапазона префикса
func (r *SubscriptionRepository) FindByGeohashRange(ctx context.Context, start, end string) ([]*models.UserSubscription, error) {
	filter := bson.M{geohashField: bson.M{"$gte": start, "$lt": end}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriptions by geohash: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions: %w", err)
	}

	users := make([]*models.UserSubscription, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toModel())
	}
	return users, nil
}

func (r *SubscriptionRepository) ClearDeviceToken(ctx context.Context, userID string) error {
	update := bson.M{
		"$unset": bson.M{"fcmToken": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to clear device token: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("subscription with id %s not found for token clear", userID)
	}
	return nil
}
