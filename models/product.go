package models

import "time"

// Product is a catalog entry owned by a farmer. Stock is mutated by checkout
// and farmer stock adjustments; SoldCount only ever increments.
type Product struct {
	ProductID    string    `json:"productId" bson:"productid"`
	FarmerID     string    `json:"farmerId" bson:"farmerId"`
	FarmerName   string    `json:"farmerName" bson:"farmerName"`
	Name         string    `json:"name" bson:"name"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Price        float64   `json:"price" bson:"price"`
	Stock        int       `json:"stock" bson:"stock"`
	Unit         string    `json:"unit" bson:"unit"` // e.g. "kg", "ikat", "butir"
	Category     string    `json:"category" bson:"category"`
	ImageURL     string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	HarvestDate  time.Time `json:"harvestDate,omitempty" bson:"harvestDate,omitempty"`
	Location     string    `json:"location,omitempty" bson:"location,omitempty"`
	Subscribable bool      `json:"subscribable" bson:"subscribable"`
	SoldCount    int       `json:"soldCount" bson:"soldCount"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
