package models

import "time"

// Shipping status values.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Payment status values.
type PaymentStatus string

const (
	PaymentUnpaid              PaymentStatus = "unpaid"
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentPaid                PaymentStatus = "paid"
	PaymentRejected            PaymentStatus = "rejected"
)

// forwardShipping is the one-step forward chain farmers walk. Cancellation
// is not in this table; it is admin-only and reachable from any
// non-terminal state.
var forwardShipping = map[OrderStatus]OrderStatus{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// NextShippingStatus returns the single allowed forward step from cur.
func NextShippingStatus(cur OrderStatus) (OrderStatus, bool) {
	next, ok := forwardShipping[cur]
	return next, ok
}

// CanAdvanceShipping reports whether cur -> next is exactly one forward step.
func CanAdvanceShipping(cur, next OrderStatus) bool {
	allowed, ok := forwardShipping[cur]
	return ok && allowed == next
}

// TerminalShipping reports whether no further transitions are possible.
func TerminalShipping(s OrderStatus) bool {
	return s == StatusDelivered || s == StatusCancelled
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a denormalized snapshot of a purchased product line.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	ImageURL  string  `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Unit      string  `json:"unit" bson:"unit"`
	FarmerID  string  `json:"farmerId" bson:"farmerId"`
}

// Order snapshots purchased items at checkout time. TotalAmount is fixed at
// creation and never recomputed; only the two status fields, the payment
// proof and the snap token mutate afterwards. Orders are never deleted.
type Order struct {
	OrderID       string        `json:"orderId" bson:"orderid"`
	OrderNumber   string        `json:"orderNumber" bson:"orderNumber"`
	UserID        string        `json:"userId" bson:"userId"`
	Items         []OrderItem   `json:"items" bson:"items"`
	TotalAmount   float64       `json:"totalAmount" bson:"totalAmount"`
	Address       string        `json:"address" bson:"address"`
	Notes         string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Status        OrderStatus   `json:"status" bson:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	PaymentProof  string        `json:"paymentProof,omitempty" bson:"paymentProof,omitempty"`
	SnapToken     string        `json:"snapToken,omitempty" bson:"snapToken,omitempty"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// HasFarmerItem reports whether at least one line item belongs to farmerID.
func (o *Order) HasFarmerItem(farmerID string) bool {
	for _, it := range o.Items {
		if it.FarmerID == farmerID {
			return true
		}
	}
	return false
}

// LineTotal returns the sum of price x quantity across items.
func LineTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
