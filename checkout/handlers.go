package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"panenku/mq"
	"panenku/utils"

	"github.com/julienschmidt/httprouter"
)

var service = NewMongoService()

// Checkout handles POST /api/checkout.
func Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid checkout payload")
		return
	}

	order, err := service.Checkout(ctx, userID, req)
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			utils.RespondWithJSON(w, http.StatusConflict, utils.M{
				"error": "insufficient stock",
				"items": stockErr.Items,
			})
		case errors.Is(err, ErrEmptyCart):
			utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		default:
			log.Println("Checkout error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Checkout failed")
		}
		return
	}

	mq.EmitOrderEvent(ctx, mq.OrderEvent{
		Type:          "created",
		OrderID:       order.OrderID,
		UserID:        order.UserID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Source:        "checkout",
	})

	utils.RespondWithJSON(w, http.StatusCreated, order)
}
