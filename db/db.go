package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection          *mongo.Collection
	ProductsCollection      *mongo.Collection
	CartCollection          *mongo.Collection
	OrdersCollection        *mongo.Collection
	SubscriptionsCollection *mongo.Collection
	ChatRoomsCollection     *mongo.Collection
	MessagesCollection      *mongo.Collection
	Client                  *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("panenku")
	UserCollection = database.Collection("users")
	ProductsCollection = database.Collection("products")
	CartCollection = database.Collection("carts")
	OrdersCollection = database.Collection("orders")
	SubscriptionsCollection = database.Collection("subscriptions")
	ChatRoomsCollection = database.Collection("chatrooms")
	MessagesCollection = database.Collection("messages")
}
