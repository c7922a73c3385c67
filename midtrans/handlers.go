package midtrans

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"panenku/db"
	"panenku/models"
	"panenku/mq"
	"panenku/orders"
	"panenku/subscriptions"
	"panenku/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var orderService = orders.NewMongoService()

// SnapToken handles POST /api/midtrans/token. It creates a Snap transaction
// for an order the requesting buyer owns and stores the returned token.
func SnapToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.OrderID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "orderId is required")
		return
	}

	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": input.OrderID, "userId": userID}).Decode(&order)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if order.PaymentStatus == models.PaymentPaid {
		utils.RespondWithError(w, http.StatusConflict, "Order is already paid")
		return
	}

	// Reuse an existing token so repeated clicks do not open duplicate
	// Snap transactions.
	if order.SnapToken != "" {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": order.SnapToken})
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	token, err := CreateSnapToken(ctx, order.OrderNumber, int64(order.TotalAmount), user.Name, user.Email, user.Phone)
	if err != nil {
		log.Println("SnapToken create error:", err)
		utils.RespondWithError(w, http.StatusBadGateway, "Payment gateway unavailable")
		return
	}

	_, err = db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": order.OrderID},
		bson.M{"$set": bson.M{"snapToken": token, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Println("SnapToken store error:", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": token})
}

type notificationPayload struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// Notification handles POST /api/midtrans/notification, the gateway's
// server-to-server webhook. The payload signature is verified before any
// write; writes are skipped when the mapped status matches the stored one.
func Notification(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var payload notificationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid notification payload")
		return
	}

	if !ValidSignature(payload.OrderID, payload.StatusCode, payload.GrossAmount, payload.SignatureKey, serverKey()) {
		log.Printf("midtrans: bad signature for order %s", payload.OrderID)
		utils.RespondWithError(w, http.StatusForbidden, "Invalid signature")
		return
	}

	// order_id on the wire is our order number.
	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderNumber": payload.OrderID}).Decode(&order)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	updated, changed, err := orderService.ApplyGatewayStatus(ctx, order.OrderID, payload.TransactionStatus, payload.FraudStatus)
	if err != nil {
		log.Println("Notification apply error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to apply notification")
		return
	}

	if changed {
		if updated.PaymentStatus == models.PaymentPaid {
			subscriptions.ActivateForOrder(ctx, updated.OrderID, time.Now())
		}
		mq.EmitOrderEvent(ctx, mq.OrderEvent{
			Type:          "payment_changed",
			OrderID:       updated.OrderID,
			UserID:        updated.UserID,
			PaymentStatus: string(updated.PaymentStatus),
			Source:        "webhook",
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}
