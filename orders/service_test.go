package orders_test

import (
	"context"
	"testing"

	"panenku/models"
	"panenku/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	getFunc              func(ctx context.Context, orderID string) (*models.Order, error)
	setStatusFunc        func(ctx context.Context, orderID string, status models.OrderStatus) error
	setPaymentStatusFunc func(ctx context.Context, orderID string, status models.PaymentStatus) error
	setPaymentProofFunc  func(ctx context.Context, orderID string, proofURL string) error
}

func (m *mockStore) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return m.getFunc(ctx, orderID)
}

func (m *mockStore) SetStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, orderID, status)
	}
	return nil
}

func (m *mockStore) SetPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) error {
	if m.setPaymentStatusFunc != nil {
		return m.setPaymentStatusFunc(ctx, orderID, status)
	}
	return nil
}

func (m *mockStore) SetPaymentProof(ctx context.Context, orderID string, proofURL string) error {
	if m.setPaymentProofFunc != nil {
		return m.setPaymentProofFunc(ctx, orderID, proofURL)
	}
	return nil
}

func storedOrder(status models.OrderStatus, payment models.PaymentStatus) *models.Order {
	return &models.Order{
		OrderID:       "o1",
		OrderNumber:   "PK-20250601093000-1234",
		UserID:        "buyer1",
		Items:         []models.OrderItem{{ProductID: "p1", FarmerID: "f1", Price: 15000, Quantity: 2}},
		TotalAmount:   30000,
		Status:        status,
		PaymentStatus: payment,
	}
}

func TestFarmerAdvance(t *testing.T) {
	tests := []struct {
		name      string
		order     *models.Order
		farmerID  string
		next      models.OrderStatus
		wantErrIs error
		want      models.OrderStatus
	}{
		{
			name:     "pending_to_processing",
			order:    storedOrder(models.StatusPending, models.PaymentPaid),
			farmerID: "f1",
			next:     models.StatusProcessing,
			want:     models.StatusProcessing,
		},
		{
			name:     "shipped_to_delivered",
			order:    storedOrder(models.StatusShipped, models.PaymentPaid),
			farmerID: "f1",
			next:     models.StatusDelivered,
			want:     models.StatusDelivered,
		},
		{
			name:      "not_owner",
			order:     storedOrder(models.StatusPending, models.PaymentPaid),
			farmerID:  "other",
			next:      models.StatusProcessing,
			wantErrIs: orders.ErrForbidden,
		},
		{
			name:      "payment_not_confirmed",
			order:     storedOrder(models.StatusPending, models.PaymentPendingVerification),
			farmerID:  "f1",
			next:      models.StatusProcessing,
			wantErrIs: orders.ErrPaymentNotPaid,
		},
		{
			name:      "skip_a_step",
			order:     storedOrder(models.StatusPending, models.PaymentPaid),
			farmerID:  "f1",
			next:      models.StatusShipped,
			wantErrIs: orders.ErrInvalidTransition,
		},
		{
			name:      "regression",
			order:     storedOrder(models.StatusShipped, models.PaymentPaid),
			farmerID:  "f1",
			next:      models.StatusProcessing,
			wantErrIs: orders.ErrInvalidTransition,
		},
		{
			name:      "delivered_is_terminal",
			order:     storedOrder(models.StatusDelivered, models.PaymentPaid),
			farmerID:  "f1",
			next:      models.StatusDelivered,
			wantErrIs: orders.ErrInvalidTransition,
		},
		{
			name:      "farmer_cannot_cancel",
			order:     storedOrder(models.StatusPending, models.PaymentPaid),
			farmerID:  "f1",
			next:      models.StatusCancelled,
			wantErrIs: orders.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := orders.NewService(&mockStore{
				getFunc: func(ctx context.Context, orderID string) (*models.Order, error) {
					return tt.order, nil
				},
			})
			got, err := svc.FarmerAdvance(context.Background(), "o1", tt.farmerID, tt.next)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestAdminSetStatus(t *testing.T) {
	tests := []struct {
		name      string
		order     *models.Order
		status    models.OrderStatus
		wantErrIs error
	}{
		{
			name:   "cancel_pending",
			order:  storedOrder(models.StatusPending, models.PaymentUnpaid),
			status: models.StatusCancelled,
		},
		{
			name:   "cancel_shipped",
			order:  storedOrder(models.StatusShipped, models.PaymentPaid),
			status: models.StatusCancelled,
		},
		{
			name:   "jump_to_shipped",
			order:  storedOrder(models.StatusPending, models.PaymentPaid),
			status: models.StatusShipped,
		},
		{
			name:      "delivered_stays_delivered",
			order:     storedOrder(models.StatusDelivered, models.PaymentPaid),
			status:    models.StatusCancelled,
			wantErrIs: orders.ErrTerminalOrder,
		},
		{
			name:      "cancelled_stays_cancelled",
			order:     storedOrder(models.StatusCancelled, models.PaymentUnpaid),
			status:    models.StatusPending,
			wantErrIs: orders.ErrTerminalOrder,
		},
		{
			name:      "unknown_status",
			order:     storedOrder(models.StatusPending, models.PaymentUnpaid),
			status:    "lost",
			wantErrIs: orders.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := orders.NewService(&mockStore{
				getFunc: func(ctx context.Context, orderID string) (*models.Order, error) {
					return tt.order, nil
				},
			})
			got, err := svc.AdminSetStatus(context.Background(), "o1", tt.status)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestSubmitProof(t *testing.T) {
	tests := []struct {
		name      string
		order     *models.Order
		userID    string
		wantErrIs error
	}{
		{
			name:   "from_unpaid",
			order:  storedOrder(models.StatusPending, models.PaymentUnpaid),
			userID: "buyer1",
		},
		{
			name:   "resubmit_after_rejection",
			order:  storedOrder(models.StatusPending, models.PaymentRejected),
			userID: "buyer1",
		},
		{
			name:      "not_the_buyer",
			order:     storedOrder(models.StatusPending, models.PaymentUnpaid),
			userID:    "other",
			wantErrIs: orders.ErrForbidden,
		},
		{
			name:      "already_pending_verification",
			order:     storedOrder(models.StatusPending, models.PaymentPendingVerification),
			userID:    "buyer1",
			wantErrIs: orders.ErrInvalidTransition,
		},
		{
			name:      "already_paid",
			order:     storedOrder(models.StatusProcessing, models.PaymentPaid),
			userID:    "buyer1",
			wantErrIs: orders.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotProof string
			svc := orders.NewService(&mockStore{
				getFunc: func(ctx context.Context, orderID string) (*models.Order, error) {
					return tt.order, nil
				},
				setPaymentProofFunc: func(ctx context.Context, orderID, proofURL string) error {
					gotProof = proofURL
					return nil
				},
			})
			got, err := svc.SubmitProof(context.Background(), "o1", tt.userID, "/static/paymentproof/x.jpg")
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.PaymentPendingVerification, got.PaymentStatus)
			assert.Equal(t, "/static/paymentproof/x.jpg", gotProof)
		})
	}
}

func TestVerifyPayment(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		svc := orders.NewService(&mockStore{
			getFunc: func(ctx context.Context, orderID string) (*models.Order, error) {
				return storedOrder(models.StatusPending, models.PaymentPendingVerification), nil
			},
		})
		got, err := svc.VerifyPayment(context.Background(), "o1", true)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	})

	t.Run("reject", func(t *testing.T) {
		svc := orders.NewService(&mockStore{
			getFunc: func(ctx context.Context, orderID string) (*models.Order, error) {
				return storedOrder(models.StatusPending, models.PaymentPendingVerification), nil
			},
		})
		got, err := svc.VerifyPayment(context.Background(), "o1", false)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentRejected, got.PaymentStatus)
	})

	t.Run("nothing_to_verify", func(t *testing.T) {
		svc := orders.NewService(&mockStore{
			getFunc: func(ctx context.Context, orderID string) (*models.Order, error) {
				return storedOrder(models.StatusPending, models.PaymentUnpaid), nil
			},
		})
		_, err := svc.VerifyPayment(context.Background(), "o1", true)
		assert.ErrorIs(t, err, orders.ErrInvalidTransition)
	})
}

func TestApplyGatewayStatus(t *testing.T) {
	tests := []struct {
		name              string
		stored            models.PaymentStatus
		transactionStatus string
		fraudStatus       string
		wantStatus        models.PaymentStatus
		wantChanged       bool
	}{
		{
			name:              "settlement_marks_paid",
			stored:            models.PaymentUnpaid,
			transactionStatus: "settlement",
			wantStatus:        models.PaymentPaid,
			wantChanged:       true,
		},
		{
			name:              "capture_accept_marks_paid",
			stored:            models.PaymentUnpaid,
			transactionStatus: "capture",
			fraudStatus:       "accept",
			wantStatus:        models.PaymentPaid,
			wantChanged:       true,
		},
		{
			name:              "capture_challenge_holds",
			stored:            models.PaymentUnpaid,
			transactionStatus: "capture",
			fraudStatus:       "challenge",
			wantStatus:        models.PaymentPendingVerification,
			wantChanged:       true,
		},
		{
			name:              "expire_rejects",
			stored:            models.PaymentPendingVerification,
			transactionStatus: "expire",
			wantStatus:        models.PaymentRejected,
			wantChanged:       true,
		},
		{
			name:              "duplicate_settlement_is_idempotent",
			stored:            models.PaymentPaid,
			transactionStatus: "settlement",
			wantStatus:        models.PaymentPaid,
			wantChanged:       false,
		},
		{
			name:              "unmapped_status_is_ignored",
			stored:            models.PaymentUnpaid,
			transactionStatus: "refund",
			wantStatus:        models.PaymentUnpaid,
			wantChanged:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writes := 0
			svc := orders.NewService(&mockStore{
				getFunc: func(ctx context.Context, orderID string) (*models.Order, error) {
					return storedOrder(models.StatusPending, tt.stored), nil
				},
				setPaymentStatusFunc: func(ctx context.Context, orderID string, status models.PaymentStatus) error {
					writes++
					return nil
				},
			})
			got, changed, err := svc.ApplyGatewayStatus(context.Background(), "o1", tt.transactionStatus, tt.fraudStatus)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantStatus, got.PaymentStatus)
			if tt.wantChanged {
				assert.Equal(t, 1, writes)
			} else {
				assert.Zero(t, writes, "no write expected for an unchanged status")
			}
		})
	}
}
