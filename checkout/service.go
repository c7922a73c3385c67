package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"panenku/models"
	"panenku/utils"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
)

// ShortItem describes one line that failed the stock check.
type ShortItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError rejects the whole checkout; no partial fulfillment.
type InsufficientStockError struct {
	Items []ShortItem
}

func (e *InsufficientStockError) Error() string {
	names := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		names = append(names, it.Name)
	}
	return fmt.Sprintf("insufficient stock: %s", strings.Join(names, ", "))
}

type ProductStore interface {
	Get(ctx context.Context, productID string) (*models.Product, error)
	// Sell decrements stock and increments soldCount, guarded by
	// stock >= qty. Returns false when the guard did not match.
	Sell(ctx context.Context, productID string, qty int) (bool, error)
}

type CartStore interface {
	Items(ctx context.Context, userID string) ([]models.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
}

type SubscriptionStore interface {
	Insert(ctx context.Context, sub *models.Subscription) error
}

// SubscribeOption opts one cart line into a recurring delivery.
type SubscribeOption struct {
	ProductID string           `json:"productId"`
	Frequency models.Frequency `json:"frequency"`
}

// Request is the checkout payload. Line items come from the stored cart,
// not the request body.
type Request struct {
	Address       string            `json:"address"`
	Notes         string            `json:"notes"`
	Subscriptions []SubscribeOption `json:"subscriptions"`
}

type Service struct {
	Products ProductStore
	Carts    CartStore
	Orders   OrderStore
	Subs     SubscriptionStore
	Now      func() time.Time
}

func NewService(products ProductStore, carts CartStore, orders OrderStore, subs SubscriptionStore) *Service {
	return &Service{
		Products: products,
		Carts:    carts,
		Orders:   orders,
		Subs:     subs,
		Now:      time.Now,
	}
}

// NewOrderNumber builds a unique human-readable order reference.
func NewOrderNumber(now time.Time) string {
	return "PK-" + now.Format("20060102150405") + "-" + utils.GenerateRandomDigitString(4)
}

// BuildOrder assembles a fresh Order from snapshot items. The scheduler uses
// this too, so subscription-born orders are identical to checkout orders.
func BuildOrder(userID, address, notes string, items []models.OrderItem, now time.Time) *models.Order {
	return &models.Order{
		OrderID:       utils.GetUUID(),
		OrderNumber:   NewOrderNumber(now),
		UserID:        userID,
		Items:         items,
		TotalAmount:   models.LineTotal(items),
		Address:       address,
		Notes:         notes,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Checkout validates every cart line against live stock, then decrements
// stock, creates the order, records opted-in subscriptions and clears the
// cart. Validation happens for all lines before any stock mutation; if any
// line is short the whole request is rejected untouched. Stock decrements
// are NOT rolled back if order persistence fails afterwards.
func (s *Service) Checkout(ctx context.Context, userID string, req Request) (*models.Order, error) {
	if req.Address == "" {
		return nil, errors.New("shipping address is required")
	}

	cartItems, err := s.Carts.Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	// Pass 1: re-fetch live stock for every line.
	var short []ShortItem
	orderItems := make([]models.OrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		product, err := s.Products.Get(ctx, ci.ProductID)
		if err != nil {
			short = append(short, ShortItem{ProductID: ci.ProductID, Name: ci.Name, Requested: ci.Quantity, Available: 0})
			continue
		}
		if product.Stock < ci.Quantity {
			short = append(short, ShortItem{ProductID: ci.ProductID, Name: product.Name, Requested: ci.Quantity, Available: product.Stock})
			continue
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ProductID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			Price:     product.Price,
			Quantity:  ci.Quantity,
			Unit:      product.Unit,
			FarmerID:  product.FarmerID,
		})
	}
	if len(short) > 0 {
		return nil, &InsufficientStockError{Items: short}
	}

	// Pass 2: mutate stock. Each decrement is individually guarded, so a
	// concurrent sale that slips between the passes skips the mutation
	// instead of driving stock negative.
	for _, it := range orderItems {
		sold, err := s.Products.Sell(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", it.ProductID, err)
		}
		if !sold {
			log.Printf("checkout: lost stock race on product %s (qty %d)", it.ProductID, it.Quantity)
		}
	}

	now := s.Now()
	order := BuildOrder(userID, req.Address, req.Notes, orderItems, now)
	if err := s.Orders.Insert(ctx, order); err != nil {
		// Stock already mutated; not rolled back.
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, opt := range req.Subscriptions {
		s.createSubscription(ctx, userID, order, opt, now)
	}

	if err := s.Carts.Clear(ctx, userID); err != nil {
		log.Printf("checkout: clear cart for %s: %v", userID, err)
	}

	return order, nil
}

func (s *Service) createSubscription(ctx context.Context, userID string, order *models.Order, opt SubscribeOption, now time.Time) {
	if _, ok := opt.Frequency.Days(); !ok {
		log.Printf("checkout: unknown frequency %q for product %s", opt.Frequency, opt.ProductID)
		return
	}
	for _, it := range order.Items {
		if it.ProductID != opt.ProductID {
			continue
		}
		sub := &models.Subscription{
			SubscriptionID: utils.GetUUID(),
			UserID:         userID,
			ProductID:      it.ProductID,
			ProductName:    it.Name,
			Quantity:       it.Quantity,
			Frequency:      opt.Frequency,
			Status:         models.SubPending,
			OrderID:        order.OrderID,
			Address:        order.Address,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.Subs.Insert(ctx, sub); err != nil {
			log.Printf("checkout: create subscription for %s: %v", it.ProductID, err)
		}
		return
	}
	log.Printf("checkout: subscription flag for %s does not match any order line", opt.ProductID)
}
