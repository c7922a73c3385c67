package subscriptions

import (
	"context"
	"time"

	"panenku/db"
	"panenku/models"

	"go.mongodb.org/mongo-driver/bson"
)

type mongoSubs struct{}

func (mongoSubs) Due(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	cursor, err := db.SubscriptionsCollection.Find(ctx, bson.M{
		"status":       models.SubActive,
		"nextDelivery": bson.M{"$lte": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (mongoSubs) SetNextDelivery(ctx context.Context, subscriptionID string, next time.Time) error {
	_, err := db.SubscriptionsCollection.UpdateOne(ctx,
		bson.M{"subscriptionid": subscriptionID},
		bson.M{"$set": bson.M{"nextDelivery": next, "updatedAt": time.Now()}},
	)
	return err
}

func (mongoSubs) SetStatus(ctx context.Context, subscriptionID string, status models.SubscriptionStatus) error {
	_, err := db.SubscriptionsCollection.UpdateOne(ctx,
		bson.M{"subscriptionid": subscriptionID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	return err
}
