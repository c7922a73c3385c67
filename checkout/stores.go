package checkout

import (
	"context"
	"time"

	"panenku/db"
	"panenku/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Mongo-backed stores used by the live service.

type mongoProducts struct{}

func (mongoProducts) Get(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": productID}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (mongoProducts) Sell(ctx context.Context, productID string, qty int) (bool, error) {
	res, err := db.ProductsCollection.UpdateOne(ctx,
		bson.M{"productid": productID, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty, "soldCount": qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

type mongoCarts struct{}

func (mongoCarts) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	cursor, err := db.CartCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (mongoCarts) Clear(ctx context.Context, userID string) error {
	_, err := db.CartCollection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

type mongoOrders struct{}

func (mongoOrders) Insert(ctx context.Context, order *models.Order) error {
	_, err := db.OrdersCollection.InsertOne(ctx, order)
	return err
}

type mongoSubs struct{}

func (mongoSubs) Insert(ctx context.Context, sub *models.Subscription) error {
	_, err := db.SubscriptionsCollection.InsertOne(ctx, sub)
	return err
}

// NewMongoService wires the service to the live collections.
func NewMongoService() *Service {
	return NewService(mongoProducts{}, mongoCarts{}, mongoOrders{}, mongoSubs{})
}

// MongoProducts exposes the live product store for the scheduler.
func MongoProducts() ProductStore { return mongoProducts{} }

// MongoOrders exposes the live order store for the scheduler.
func MongoOrders() OrderStore { return mongoOrders{} }
