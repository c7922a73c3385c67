package models_test

import (
	"testing"

	"panenku/models"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceShipping(t *testing.T) {
	tests := []struct {
		name string
		cur  models.OrderStatus
		next models.OrderStatus
		want bool
	}{
		{"pending_to_processing", models.StatusPending, models.StatusProcessing, true},
		{"processing_to_shipped", models.StatusProcessing, models.StatusShipped, true},
		{"shipped_to_delivered", models.StatusShipped, models.StatusDelivered, true},
		{"pending_to_shipped_skips", models.StatusPending, models.StatusShipped, false},
		{"shipped_to_processing_regresses", models.StatusShipped, models.StatusProcessing, false},
		{"delivered_is_final", models.StatusDelivered, models.StatusDelivered, false},
		{"cancelled_is_final", models.StatusCancelled, models.StatusPending, false},
		{"cancel_is_not_a_forward_step", models.StatusPending, models.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.CanAdvanceShipping(tt.cur, tt.next))
		})
	}
}

func TestNextShippingStatus(t *testing.T) {
	next, ok := models.NextShippingStatus(models.StatusPending)
	assert.True(t, ok)
	assert.Equal(t, models.StatusProcessing, next)

	_, ok = models.NextShippingStatus(models.StatusDelivered)
	assert.False(t, ok)
}

func TestTerminalShipping(t *testing.T) {
	assert.True(t, models.TerminalShipping(models.StatusDelivered))
	assert.True(t, models.TerminalShipping(models.StatusCancelled))
	assert.False(t, models.TerminalShipping(models.StatusPending))
	assert.False(t, models.TerminalShipping(models.StatusShipped))
}

func TestLineTotal(t *testing.T) {
	items := []models.OrderItem{
		{Price: 15000, Quantity: 2},
		{Price: 2500, Quantity: 10},
	}
	assert.Equal(t, 55000.0, models.LineTotal(items))
	assert.Zero(t, models.LineTotal(nil))
}

func TestHasFarmerItem(t *testing.T) {
	order := &models.Order{Items: []models.OrderItem{
		{ProductID: "p1", FarmerID: "f1"},
		{ProductID: "p2", FarmerID: "f2"},
	}}
	assert.True(t, order.HasFarmerItem("f2"))
	assert.False(t, order.HasFarmerItem("f3"))
}

func TestFrequencyDays(t *testing.T) {
	tests := []struct {
		freq models.Frequency
		days int
		ok   bool
	}{
		{models.FreqDaily, 1, true},
		{models.FreqWeekly, 7, true},
		{models.FreqBiweekly, 14, true},
		{models.FreqMonthly, 30, true},
		{"hourly", 0, false},
	}

	for _, tt := range tests {
		days, ok := tt.freq.Days()
		assert.Equal(t, tt.ok, ok, string(tt.freq))
		assert.Equal(t, tt.days, days, string(tt.freq))
	}
}
