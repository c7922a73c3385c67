package models

import "time"

// CartItem is a single line in a user's cart. Name, price, unit and image
// are denormalized from the product at add time; quantity is clamped to the
// product's live stock on every mutation.
type CartItem struct {
	UserID    string    `json:"userId" bson:"userId"`
	ProductID string    `json:"productId" bson:"productId"`
	Name      string    `json:"name" bson:"name"`
	ImageURL  string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Price     float64   `json:"price" bson:"price"` // unit price
	Unit      string    `json:"unit" bson:"unit"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	FarmerID  string    `json:"farmerId" bson:"farmerId"`
	AddedAt   time.Time `json:"addedAt" bson:"addedAt"`
}
