package models

import "time"

// Subscription status values.
type SubscriptionStatus string

const (
	SubPending   SubscriptionStatus = "pending"
	SubActive    SubscriptionStatus = "active"
	SubPaused    SubscriptionStatus = "paused"
	SubCancelled SubscriptionStatus = "cancelled"
)

// Delivery frequency values.
type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekly   Frequency = "weekly"
	FreqBiweekly Frequency = "biweekly"
	FreqMonthly  Frequency = "monthly"
)

var frequencyDays = map[Frequency]int{
	FreqDaily:    1,
	FreqWeekly:   7,
	FreqBiweekly: 14,
	FreqMonthly:  30,
}

// Days returns the delivery interval in days, or false for an unknown value.
func (f Frequency) Days() (int, bool) {
	d, ok := frequencyDays[f]
	return d, ok
}

// Subscription is a standing intent to reorder a fixed product and quantity
// on a recurring schedule. Created pending at checkout, activated when the
// originating order is paid, advanced by the scheduler each cycle.
// NextDelivery only ever moves forward.
type Subscription struct {
	SubscriptionID string             `json:"subscriptionId" bson:"subscriptionid"`
	UserID         string             `json:"userId" bson:"userId"`
	ProductID      string             `json:"productId" bson:"productId"`
	ProductName    string             `json:"productName" bson:"productName"`
	Quantity       int                `json:"quantity" bson:"quantity"`
	Frequency      Frequency          `json:"frequency" bson:"frequency"`
	Status         SubscriptionStatus `json:"status" bson:"status"`
	OrderID        string             `json:"orderId,omitempty" bson:"orderId,omitempty"` // originating order
	Address        string             `json:"address" bson:"address"`
	NextDelivery   time.Time          `json:"nextDelivery" bson:"nextDelivery"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}
