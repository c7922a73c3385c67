package mq

import (
	"context"
	"encoding/json"
	"log"

	"panenku/rdx"
)

const orderEventsChannel = "order-events"

// OrderEvent describes an order lifecycle change broadcast to interested
// workers (notifications, analytics).
type OrderEvent struct {
	Type          string `json:"type"` // "created", "status_changed", "payment_changed"
	OrderID       string `json:"orderId"`
	UserID        string `json:"userId"`
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	Source        string `json:"source,omitempty"` // "checkout", "scheduler", "webhook", "admin", "farmer"
}

// EmitOrderEvent publishes an order event to Redis. Failures are logged, not
// returned; events are advisory.
func EmitOrderEvent(ctx context.Context, event OrderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[mq] marshal order event: %v", err)
		return
	}
	if err := rdx.Conn.Publish(ctx, orderEventsChannel, data).Err(); err != nil {
		log.Printf("[mq] publish order event: %v", err)
	}
}

// StartOrderEventWorker consumes the order-events channel. Currently it only
// logs; notification delivery hangs off this subscriber.
func StartOrderEventWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, orderEventsChannel)
	ch := sub.Channel()

	log.Println("[OrderEventWorker] Listening for order events...")

	for msg := range ch {
		var event OrderEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[OrderEventWorker] Failed to parse event: %v", err)
			continue
		}
		log.Printf("[OrderEventWorker] order=%s type=%s status=%s payment=%s source=%s",
			event.OrderID, event.Type, event.Status, event.PaymentStatus, event.Source)
	}
}
