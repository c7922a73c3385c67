package checkout_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"panenku/checkout"
	"panenku/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

type mockCarts struct {
	itemsFunc func(ctx context.Context, userID string) ([]models.CartItem, error)
	clearFunc func(ctx context.Context, userID string) error
}

func (m *mockCarts) Items(ctx context.Context, userID string) ([]models.CartItem, error) {
	return m.itemsFunc(ctx, userID)
}

func (m *mockCarts) Clear(ctx context.Context, userID string) error {
	return m.clearFunc(ctx, userID)
}

type mockOrders struct {
	insertFunc func(ctx context.Context, order *models.Order) error
}

func (m *mockOrders) Insert(ctx context.Context, order *models.Order) error {
	return m.insertFunc(ctx, order)
}

type mockSubs struct {
	insertFunc func(ctx context.Context, sub *models.Subscription) error
}

func (m *mockSubs) Insert(ctx context.Context, sub *models.Subscription) error {
	return m.insertFunc(ctx, sub)
}

func catalog(products ...models.Product) map[string]*models.Product {
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ProductID] = &products[i]
	}
	return byID
}

func newTestService(byID map[string]*models.Product, cartItems []models.CartItem) (*checkout.Service, *[]*models.Order, *[]*models.Subscription, *[]string) {
	var inserted []*models.Order
	var subs []*models.Subscription
	var sold []string

	svc := checkout.NewService(
		&mockProducts{
			getFunc: func(ctx context.Context, id string) (*models.Product, error) {
				p, ok := byID[id]
				if !ok {
					return nil, errors.New("not found")
				}
				return p, nil
			},
			sellFunc: func(ctx context.Context, id string, qty int) (bool, error) {
				sold = append(sold, id)
				return true, nil
			},
		},
		&mockCarts{
			itemsFunc: func(ctx context.Context, userID string) ([]models.CartItem, error) {
				return cartItems, nil
			},
			clearFunc: func(ctx context.Context, userID string) error { return nil },
		},
		&mockOrders{
			insertFunc: func(ctx context.Context, order *models.Order) error {
				inserted = append(inserted, order)
				return nil
			},
		},
		&mockSubs{
			insertFunc: func(ctx context.Context, sub *models.Subscription) error {
				subs = append(subs, sub)
				return nil
			},
		},
	)
	return svc, &inserted, &subs, &sold
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _, _, _ := newTestService(nil, nil)

	_, err := svc.Checkout(context.Background(), "u1", checkout.Request{Address: "Jl. Mawar 1"})
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestCheckout_MissingAddress(t *testing.T) {
	svc, _, _, _ := newTestService(nil, nil)

	_, err := svc.Checkout(context.Background(), "u1", checkout.Request{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "address")
}

func TestCheckout_RejectsWholeCartWhenAnyLineIsShort(t *testing.T) {
	byID := catalog(
		models.Product{ProductID: "p1", Name: "Beras Organik", Price: 15000, Stock: 100},
		models.Product{ProductID: "p2", Name: "Telur Ayam", Price: 2500, Stock: 3},
	)
	cart := []models.CartItem{
		{ProductID: "p1", Name: "Beras Organik", Quantity: 2},
		{ProductID: "p2", Name: "Telur Ayam", Quantity: 10},
	}
	svc, inserted, _, sold := newTestService(byID, cart)

	_, err := svc.Checkout(context.Background(), "u1", checkout.Request{Address: "Jl. Mawar 1"})

	var stockErr *checkout.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Items, 1)
	assert.Equal(t, "p2", stockErr.Items[0].ProductID)
	assert.Equal(t, 10, stockErr.Items[0].Requested)
	assert.Equal(t, 3, stockErr.Items[0].Available)

	// Nothing was mutated, not even the line that had stock.
	assert.Empty(t, *sold)
	assert.Empty(t, *inserted)
}

func TestCheckout_MissingProductReportedAsShort(t *testing.T) {
	byID := catalog(models.Product{ProductID: "p1", Name: "Beras Organik", Price: 15000, Stock: 100})
	cart := []models.CartItem{
		{ProductID: "p1", Name: "Beras Organik", Quantity: 1},
		{ProductID: "gone", Name: "Produk Lama", Quantity: 1},
	}
	svc, _, _, sold := newTestService(byID, cart)

	_, err := svc.Checkout(context.Background(), "u1", checkout.Request{Address: "Jl. Mawar 1"})

	var stockErr *checkout.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Items, 1)
	assert.Equal(t, "gone", stockErr.Items[0].ProductID)
	assert.Equal(t, 0, stockErr.Items[0].Available)
	assert.Empty(t, *sold)
}

func TestCheckout_Success(t *testing.T) {
	byID := catalog(
		models.Product{ProductID: "p1", Name: "Beras Organik", Price: 15000, Stock: 100, Unit: "kg", FarmerID: "f1"},
		models.Product{ProductID: "p2", Name: "Telur Ayam", Price: 2500, Stock: 50, Unit: "butir", FarmerID: "f2"},
	)
	cart := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 10},
	}
	svc, inserted, _, sold := newTestService(byID, cart)
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	order, err := svc.Checkout(context.Background(), "u1", checkout.Request{Address: "Jl. Mawar 1", Notes: "pagi saja"})
	require.NoError(t, err)

	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, 2*15000.0+10*2500.0, order.TotalAmount)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "PK-20250601093000-"), order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "f1", order.Items[0].FarmerID)
	assert.Equal(t, "kg", order.Items[0].Unit)

	assert.Equal(t, []string{"p1", "p2"}, *sold)
	require.Len(t, *inserted, 1)
	assert.Equal(t, order, (*inserted)[0])
}

func TestCheckout_SubscriptionOptIn(t *testing.T) {
	byID := catalog(
		models.Product{ProductID: "p1", Name: "Susu Segar", Price: 20000, Stock: 30, Subscribable: true},
	)
	cart := []models.CartItem{{ProductID: "p1", Quantity: 3}}
	svc, _, subs, _ := newTestService(byID, cart)

	order, err := svc.Checkout(context.Background(), "u1", checkout.Request{
		Address:       "Jl. Mawar 1",
		Subscriptions: []checkout.SubscribeOption{{ProductID: "p1", Frequency: models.FreqWeekly}},
	})
	require.NoError(t, err)

	require.Len(t, *subs, 1)
	sub := (*subs)[0]
	assert.Equal(t, "p1", sub.ProductID)
	assert.Equal(t, 3, sub.Quantity)
	assert.Equal(t, models.FreqWeekly, sub.Frequency)
	assert.Equal(t, models.SubPending, sub.Status)
	assert.Equal(t, order.OrderID, sub.OrderID)
	assert.Equal(t, order.Address, sub.Address)
}

func TestCheckout_UnknownFrequencySkipsSubscription(t *testing.T) {
	byID := catalog(models.Product{ProductID: "p1", Name: "Susu Segar", Price: 20000, Stock: 30})
	cart := []models.CartItem{{ProductID: "p1", Quantity: 1}}
	svc, _, subs, _ := newTestService(byID, cart)

	_, err := svc.Checkout(context.Background(), "u1", checkout.Request{
		Address:       "Jl. Mawar 1",
		Subscriptions: []checkout.SubscribeOption{{ProductID: "p1", Frequency: "hourly"}},
	})
	require.NoError(t, err)
	assert.Empty(t, *subs)
}

func TestCheckout_NoStockRollbackOnOrderInsertFailure(t *testing.T) {
	byID := catalog(models.Product{ProductID: "p1", Name: "Beras Organik", Price: 15000, Stock: 10})
	cart := []models.CartItem{{ProductID: "p1", Quantity: 2}}
	svc, _, _, sold := newTestService(byID, cart)
	svc.Orders = &mockOrders{insertFunc: func(ctx context.Context, order *models.Order) error {
		return errors.New("write concern error")
	}}

	_, err := svc.Checkout(context.Background(), "u1", checkout.Request{Address: "Jl. Mawar 1"})
	assert.Error(t, err)
	// The decrement already happened and stays applied.
	assert.Equal(t, []string{"p1"}, *sold)
}

func TestNewOrderNumber_Format(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	n := checkout.NewOrderNumber(now)
	assert.True(t, strings.HasPrefix(n, "PK-20250102030405-"), n)
	assert.Len(t, n, len("PK-20250102030405-")+4)
}

func TestBuildOrder_Totals(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p1", Price: 15000, Quantity: 2},
		{ProductID: "p2", Price: 2500, Quantity: 10},
	}
	order := checkout.BuildOrder("u1", "Jl. Mawar 1", "", items, time.Now())
	assert.Equal(t, 55000.0, order.TotalAmount)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
	assert.NotEmpty(t, order.OrderID)
}
