package subscriptions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"panenku/models"
	"panenku/subscriptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSubStore struct {
	dueFunc             func(ctx context.Context, now time.Time) ([]models.Subscription, error)
	setNextDeliveryFunc func(ctx context.Context, subscriptionID string, next time.Time) error
	setStatusFunc       func(ctx context.Context, subscriptionID string, status models.SubscriptionStatus) error
}

func (m *mockSubStore) Due(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	return m.dueFunc(ctx, now)
}

func (m *mockSubStore) SetNextDelivery(ctx context.Context, subscriptionID string, next time.Time) error {
	if m.setNextDeliveryFunc != nil {
		return m.setNextDeliveryFunc(ctx, subscriptionID, next)
	}
	return nil
}

func (m *mockSubStore) SetStatus(ctx context.Context, subscriptionID string, status models.SubscriptionStatus) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, subscriptionID, status)
	}
	return nil
}

type mockProducts struct {
	getFunc  func(ctx context.Context, productID string) (*models.Product, error)
	sellFunc func(ctx context.Context, productID string, qty int) (bool, error)
}

func (m *mockProducts) Get(ctx context.Context, productID string) (*models.Product, error) {
	return m.getFunc(ctx, productID)
}

func (m *mockProducts) Sell(ctx context.Context, productID string, qty int) (bool, error) {
	return m.sellFunc(ctx, productID, qty)
}

type mockOrders struct {
	insertFunc func(ctx context.Context, order *models.Order) error
}

func (m *mockOrders) Insert(ctx context.Context, order *models.Order) error {
	return m.insertFunc(ctx, order)
}

func dueSub(id string, freq models.Frequency, nextDelivery time.Time) models.Subscription {
	return models.Subscription{
		SubscriptionID: id,
		UserID:         "u1",
		ProductID:      "p1",
		ProductName:    "Susu Segar",
		Quantity:       2,
		Frequency:      freq,
		Status:         models.SubActive,
		Address:        "Jl. Mawar 1",
		NextDelivery:   nextDelivery,
	}
}

func subscribableProduct(stock int) *models.Product {
	return &models.Product{
		ProductID:    "p1",
		FarmerID:     "f1",
		Name:         "Susu Segar",
		Price:        20000,
		Stock:        stock,
		Unit:         "liter",
		Subscribable: true,
	}
}

func TestSchedulerRun_CreatesOrderAndAdvancesNextDelivery(t *testing.T) {
	now := time.Date(2025, 6, 8, 6, 0, 0, 0, time.UTC)
	nextDelivery := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC) // overdue by a day

	var created []*models.Order
	var advancedTo time.Time

	sched := subscriptions.NewScheduler(
		&mockSubStore{
			dueFunc: func(ctx context.Context, n time.Time) ([]models.Subscription, error) {
				return []models.Subscription{dueSub("s1", models.FreqWeekly, nextDelivery)}, nil
			},
			setNextDeliveryFunc: func(ctx context.Context, id string, next time.Time) error {
				advancedTo = next
				return nil
			},
		},
		&mockProducts{
			getFunc:  func(ctx context.Context, id string) (*models.Product, error) { return subscribableProduct(50), nil },
			sellFunc: func(ctx context.Context, id string, qty int) (bool, error) { return true, nil },
		},
		&mockOrders{insertFunc: func(ctx context.Context, order *models.Order) error {
			created = append(created, order)
			return nil
		}},
	)

	report := sched.Run(context.Background(), now)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Created)
	assert.Empty(t, report.Errors)

	require.Len(t, created, 1)
	order := created[0]
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, 2*20000.0, order.TotalAmount)
	assert.Equal(t, "Recurring delivery", order.Notes)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "f1", order.Items[0].FarmerID)

	// Advance is relative to the missed slot, not to now.
	assert.Equal(t, nextDelivery.AddDate(0, 0, 7), advancedTo)
}

func TestSchedulerRun_TwoOverlappingRunsDoubleProcess(t *testing.T) {
	now := time.Now()
	var created []*models.Order

	sched := subscriptions.NewScheduler(
		&mockSubStore{
			// Both runs see the same due snapshot, as overlapping runs would.
			dueFunc: func(ctx context.Context, n time.Time) ([]models.Subscription, error) {
				return []models.Subscription{dueSub("s1", models.FreqDaily, now.Add(-time.Hour))}, nil
			},
		},
		&mockProducts{
			getFunc:  func(ctx context.Context, id string) (*models.Product, error) { return subscribableProduct(50), nil },
			sellFunc: func(ctx context.Context, id string, qty int) (bool, error) { return true, nil },
		},
		&mockOrders{insertFunc: func(ctx context.Context, order *models.Order) error {
			created = append(created, order)
			return nil
		}},
	)

	first := sched.Run(context.Background(), now)
	second := sched.Run(context.Background(), now)

	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 1, second.Created)
	assert.Len(t, created, 2)
}

func TestSchedulerRun_DeactivatesWhenProductWithdrawn(t *testing.T) {
	var cancelled []string

	sched := subscriptions.NewScheduler(
		&mockSubStore{
			dueFunc: func(ctx context.Context, n time.Time) ([]models.Subscription, error) {
				return []models.Subscription{dueSub("s1", models.FreqWeekly, time.Now())}, nil
			},
			setStatusFunc: func(ctx context.Context, id string, status models.SubscriptionStatus) error {
				assert.Equal(t, models.SubCancelled, status)
				cancelled = append(cancelled, id)
				return nil
			},
		},
		&mockProducts{
			getFunc: func(ctx context.Context, id string) (*models.Product, error) {
				p := subscribableProduct(50)
				p.Subscribable = false
				return p, nil
			},
			sellFunc: func(ctx context.Context, id string, qty int) (bool, error) {
				t.Fatal("no stock mutation expected")
				return false, nil
			},
		},
		&mockOrders{insertFunc: func(ctx context.Context, order *models.Order) error {
			t.Fatal("no order expected")
			return nil
		}},
	)

	report := sched.Run(context.Background(), time.Now())

	assert.Equal(t, 1, report.Deactivated)
	assert.Zero(t, report.Created)
	assert.Equal(t, []string{"s1"}, cancelled)
}

func TestSchedulerRun_DeactivatesWhenProductGone(t *testing.T) {
	var cancelled []string

	sched := subscriptions.NewScheduler(
		&mockSubStore{
			dueFunc: func(ctx context.Context, n time.Time) ([]models.Subscription, error) {
				return []models.Subscription{dueSub("s1", models.FreqWeekly, time.Now())}, nil
			},
			setStatusFunc: func(ctx context.Context, id string, status models.SubscriptionStatus) error {
				cancelled = append(cancelled, id)
				return nil
			},
		},
		&mockProducts{
			getFunc:  func(ctx context.Context, id string) (*models.Product, error) { return nil, errors.New("not found") },
			sellFunc: func(ctx context.Context, id string, qty int) (bool, error) { return false, nil },
		},
		&mockOrders{insertFunc: func(ctx context.Context, order *models.Order) error { return nil }},
	)

	report := sched.Run(context.Background(), time.Now())

	assert.Equal(t, 1, report.Deactivated)
	assert.Equal(t, []string{"s1"}, cancelled)
}

func TestSchedulerRun_SkipsOnInsufficientStock(t *testing.T) {
	advanced := false

	sched := subscriptions.NewScheduler(
		&mockSubStore{
			dueFunc: func(ctx context.Context, n time.Time) ([]models.Subscription, error) {
				return []models.Subscription{dueSub("s1", models.FreqWeekly, time.Now())}, nil
			},
			setNextDeliveryFunc: func(ctx context.Context, id string, next time.Time) error {
				advanced = true
				return nil
			},
		},
		&mockProducts{
			getFunc:  func(ctx context.Context, id string) (*models.Product, error) { return subscribableProduct(1), nil },
			sellFunc: func(ctx context.Context, id string, qty int) (bool, error) { return true, nil },
		},
		&mockOrders{insertFunc: func(ctx context.Context, order *models.Order) error { return nil }},
	)

	report := sched.Run(context.Background(), time.Now())

	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "insufficient stock")
	// Retried next run because nextDelivery stays in the past.
	assert.False(t, advanced)
}

func TestSchedulerRun_OneFailureDoesNotAbortTheRun(t *testing.T) {
	var created []*models.Order

	subA := dueSub("broken", "hourly", time.Now()) // unknown frequency
	subB := dueSub("ok", models.FreqDaily, time.Now())

	sched := subscriptions.NewScheduler(
		&mockSubStore{
			dueFunc: func(ctx context.Context, n time.Time) ([]models.Subscription, error) {
				return []models.Subscription{subA, subB}, nil
			},
		},
		&mockProducts{
			getFunc:  func(ctx context.Context, id string) (*models.Product, error) { return subscribableProduct(50), nil },
			sellFunc: func(ctx context.Context, id string, qty int) (bool, error) { return true, nil },
		},
		&mockOrders{insertFunc: func(ctx context.Context, order *models.Order) error {
			created = append(created, order)
			return nil
		}},
	)

	report := sched.Run(context.Background(), time.Now())

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "broken")
	assert.Contains(t, report.Errors[0], "unknown frequency")
	assert.Len(t, created, 1)
}

func TestSchedulerRun_DueQueryFailure(t *testing.T) {
	sched := subscriptions.NewScheduler(
		&mockSubStore{
			dueFunc: func(ctx context.Context, n time.Time) ([]models.Subscription, error) {
				return nil, errors.New("mongo down")
			},
		},
		&mockProducts{
			getFunc:  func(ctx context.Context, id string) (*models.Product, error) { return nil, nil },
			sellFunc: func(ctx context.Context, id string, qty int) (bool, error) { return false, nil },
		},
		&mockOrders{insertFunc: func(ctx context.Context, order *models.Order) error { return nil }},
	)

	report := sched.Run(context.Background(), time.Now())

	assert.Zero(t, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "query due subscriptions")
}
