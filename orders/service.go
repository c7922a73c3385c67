package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"panenku/models"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrForbidden         = errors.New("not allowed for this order")
	ErrPaymentNotPaid    = errors.New("order payment is not confirmed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTerminalOrder     = errors.New("order is in a terminal state")
)

type Store interface {
	Get(ctx context.Context, orderID string) (*models.Order, error)
	SetStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	SetPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) error
	SetPaymentProof(ctx context.Context, orderID string, proofURL string) error
}

type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

// FarmerAdvance moves the shipping status exactly one step forward. It
// requires confirmed payment and at least one line item owned by farmerID;
// skips and regressions are rejected.
func (s *Service) FarmerAdvance(ctx context.Context, orderID, farmerID string, next models.OrderStatus) (*models.Order, error) {
	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !order.HasFarmerItem(farmerID) {
		return nil, ErrForbidden
	}
	if order.PaymentStatus != models.PaymentPaid {
		return nil, ErrPaymentNotPaid
	}
	if !models.CanAdvanceShipping(order.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}
	if err := s.Store.SetStatus(ctx, orderID, next); err != nil {
		return nil, err
	}
	order.Status = next
	order.UpdatedAt = time.Now()
	return order, nil
}

// AdminSetStatus sets the shipping status directly. The only guard is that
// terminal orders stay terminal.
func (s *Service) AdminSetStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	if models.TerminalShipping(order.Status) && status != order.Status {
		return nil, ErrTerminalOrder
	}
	if err := s.Store.SetStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}

// SubmitProof records an uploaded payment proof and moves the payment to
// pending verification. Allowed from unpaid and rejected only.
func (s *Service) SubmitProof(ctx context.Context, orderID, userID, proofURL string) (*models.Order, error) {
	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	if !CanSubmitProof(order.PaymentStatus) {
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidTransition, order.PaymentStatus)
	}
	if err := s.Store.SetPaymentProof(ctx, orderID, proofURL); err != nil {
		return nil, err
	}
	if err := s.Store.SetPaymentStatus(ctx, orderID, models.PaymentPendingVerification); err != nil {
		return nil, err
	}
	order.PaymentProof = proofURL
	order.PaymentStatus = models.PaymentPendingVerification
	return order, nil
}

// VerifyPayment is the admin approve/reject decision on an uploaded proof.
func (s *Service) VerifyPayment(ctx context.Context, orderID string, approve bool) (*models.Order, error) {
	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !CanVerify(order.PaymentStatus) {
		return nil, fmt.Errorf("%w: payment is %s", ErrInvalidTransition, order.PaymentStatus)
	}
	status := models.PaymentRejected
	if approve {
		status = models.PaymentPaid
	}
	if err := s.Store.SetPaymentStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.PaymentStatus = status
	return order, nil
}

// ApplyGatewayStatus applies a webhook notification. The write is skipped
// when the computed status equals the stored one; the bool reports whether a
// write happened.
func (s *Service) ApplyGatewayStatus(ctx context.Context, orderID, transactionStatus, fraudStatus string) (*models.Order, bool, error) {
	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, false, ErrNotFound
	}
	status, ok := GatewayPaymentStatus(transactionStatus, fraudStatus)
	if !ok {
		return order, false, nil
	}
	if status == order.PaymentStatus {
		return order, false, nil
	}
	if err := s.Store.SetPaymentStatus(ctx, orderID, status); err != nil {
		return nil, false, err
	}
	order.PaymentStatus = status
	return order, true, nil
}
