package orders

import (
	"context"
	"time"

	"panenku/db"
	"panenku/models"

	"go.mongodb.org/mongo-driver/bson"
)

type mongoStore struct{}

func (mongoStore) Get(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": orderID}).Decode(&order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (mongoStore) SetStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	_, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": orderID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	return err
}

func (mongoStore) SetPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) error {
	_, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": orderID},
		bson.M{"$set": bson.M{"paymentStatus": status, "updatedAt": time.Now()}},
	)
	return err
}

func (mongoStore) SetPaymentProof(ctx context.Context, orderID string, proofURL string) error {
	_, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": orderID},
		bson.M{"$set": bson.M{"paymentProof": proofURL, "updatedAt": time.Now()}},
	)
	return err
}

// NewMongoService wires the service to the live orders collection.
func NewMongoService() *Service {
	return NewService(mongoStore{})
}
