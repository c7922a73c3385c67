package subscriptions

import (
	"context"
	"fmt"
	"log"
	"time"

	"panenku/checkout"
	"panenku/models"
)

type SubStore interface {
	Due(ctx context.Context, now time.Time) ([]models.Subscription, error)
	SetNextDelivery(ctx context.Context, subscriptionID string, next time.Time) error
	SetStatus(ctx context.Context, subscriptionID string, status models.SubscriptionStatus) error
}

// Report summarizes one scheduler run. Per-subscription failures are
// collected here; one failing subscription never aborts the run.
type Report struct {
	Processed   int      `json:"processed"`
	Created     int      `json:"created"`
	Skipped     int      `json:"skipped"`
	Deactivated int      `json:"deactivated"`
	Errors      []string `json:"errors"`
}

// Scheduler materializes orders from due subscriptions. It holds no run-to-
// run lock: two overlapping runs will double-process the same due
// subscription.
type Scheduler struct {
	Subs     SubStore
	Products checkout.ProductStore
	Orders   checkout.OrderStore
}

func NewScheduler(subs SubStore, products checkout.ProductStore, orders checkout.OrderStore) *Scheduler {
	return &Scheduler{Subs: subs, Products: products, Orders: orders}
}

// Run processes every active subscription with nextDelivery <= now.
func (s *Scheduler) Run(ctx context.Context, now time.Time) Report {
	report := Report{Errors: []string{}}

	due, err := s.Subs.Due(ctx, now)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("query due subscriptions: %v", err))
		return report
	}

	for _, sub := range due {
		report.Processed++
		if err := s.process(ctx, sub, now, &report); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("subscription %s: %v", sub.SubscriptionID, err))
		}
	}

	return report
}

func (s *Scheduler) process(ctx context.Context, sub models.Subscription, now time.Time, report *Report) error {
	days, ok := sub.Frequency.Days()
	if !ok {
		return fmt.Errorf("unknown frequency %q", sub.Frequency)
	}

	product, err := s.Products.Get(ctx, sub.ProductID)
	if err != nil || !product.Subscribable {
		// Product gone or withdrawn from subscriptions; stop the cycle.
		if err := s.Subs.SetStatus(ctx, sub.SubscriptionID, models.SubCancelled); err != nil {
			return fmt.Errorf("cancel subscription: %w", err)
		}
		report.Deactivated++
		return nil
	}

	if product.Stock < sub.Quantity {
		// Leave nextDelivery untouched so the subscription is retried on
		// every run until stock recovers.
		report.Skipped++
		return fmt.Errorf("insufficient stock for %s: have %d, need %d", product.Name, product.Stock, sub.Quantity)
	}

	sold, err := s.Products.Sell(ctx, sub.ProductID, sub.Quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if !sold {
		report.Skipped++
		return fmt.Errorf("lost stock race for %s", product.Name)
	}

	order := checkout.BuildOrder(sub.UserID, sub.Address, "Recurring delivery", []models.OrderItem{{
		ProductID: product.ProductID,
		Name:      product.Name,
		ImageURL:  product.ImageURL,
		Price:     product.Price,
		Quantity:  sub.Quantity,
		Unit:      product.Unit,
		FarmerID:  product.FarmerID,
	}}, now)
	if err := s.Orders.Insert(ctx, order); err != nil {
		// Stock already mutated; same no-rollback behavior as checkout.
		return fmt.Errorf("create order: %w", err)
	}
	report.Created++

	next := sub.NextDelivery.AddDate(0, 0, days)
	if err := s.Subs.SetNextDelivery(ctx, sub.SubscriptionID, next); err != nil {
		return fmt.Errorf("advance nextDelivery: %w", err)
	}

	log.Printf("scheduler: subscription %s produced order %s, next delivery %s",
		sub.SubscriptionID, order.OrderNumber, next.Format("2006-01-02"))
	return nil
}
