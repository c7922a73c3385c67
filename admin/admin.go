package admin

import (
	"context"
	"encoding/json"
	"errors"
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

var orderService = orders.NewMongoService()

// GetUsers lists accounts, optionally filtered by role.
func GetUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["role"] = role
	}

	cursor, err := db.UserCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve users")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading users")
		return
	}
	if len(users) == 0 {
		users = []models.User{}
	}

	utils.RespondWithJSON(w, http.StatusOK, users)
}

// UpdateUserRole changes a user's role. Accounts are never deleted; role
// demotion is the strongest admin action on a user.
func UpdateUserRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || !models.ValidRole(input.Role) {
		utils.RespondWithError(w, http.StatusBadRequest, "Role must be user, farmer or admin")
		return
	}

	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": ps.ByName("id")},
		bson.M{"$set": bson.M{"role": input.Role}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update role")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// GetOrders lists all orders with optional status and payment filters.
func GetOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if payment := r.URL.Query().Get("paymentStatus"); payment != "" {
		filter["paymentStatus"] = payment
	}

	cursor, err := db.OrdersCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Order
	if err := cursor.All(ctx, &list); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading orders")
		return
	}
	if len(list) == 0 {
		list = []models.Order{}
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

// SetOrderStatus sets an order's shipping status directly. Terminal orders
// stay terminal; there is no other guard for admins.
func SetOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Status == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Status is required")
		return
	}

	order, err := orderService.AdminSetStatus(ctx, ps.ByName("id"), input.Status)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, orders.ErrTerminalOrder):
			utils.RespondWithError(w, http.StatusConflict, "Order is already delivered or cancelled")
		case errors.Is(err, orders.ErrInvalidTransition):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			log.Println("SetOrderStatus error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update order")
		}
		return
	}

	mq.EmitOrderEvent(ctx, mq.OrderEvent{
		Type:    "status_changed",
		OrderID: order.OrderID,
		UserID:  order.UserID,
		Status:  string(order.Status),
		Source:  "admin",
	})

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// VerifyPayment approves or rejects an uploaded payment proof. Approval
// activates any pending subscriptions created with the order.
func VerifyPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Approve bool `json:"approve"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	order, err := orderService.VerifyPayment(ctx, ps.ByName("id"), input.Approve)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, orders.ErrInvalidTransition):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			log.Println("VerifyPayment error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to verify payment")
		}
		return
	}

	if order.PaymentStatus == models.PaymentPaid {
		subscriptions.ActivateForOrder(ctx, order.OrderID, time.Now())
	}

	mq.EmitOrderEvent(ctx, mq.OrderEvent{
		Type:          "payment_changed",
		OrderID:       order.OrderID,
		UserID:        order.UserID,
		PaymentStatus: string(order.PaymentStatus),
		Source:        "admin",
	})

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// Dashboard returns marketplace-wide headline numbers.
func Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userCount, err := db.UserCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Dashboard query failed")
		return
	}
	productCount, err := db.ProductsCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Dashboard query failed")
		return
	}

	ordersByStatus := map[string]int64{}
	for _, status := range []models.OrderStatus{
		models.StatusPending, models.StatusProcessing, models.StatusShipped,
		models.StatusDelivered, models.StatusCancelled,
	} {
		n, err := db.OrdersCollection.CountDocuments(ctx, bson.M{"status": status})
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Dashboard query failed")
			return
		}
		ordersByStatus[string(status)] = n
	}

	// Revenue = sum of totalAmount across paid orders.
	pipeline := []bson.M{
		{"$match": bson.M{"paymentStatus": models.PaymentPaid}},
		{"$group": bson.M{"_id": nil, "revenue": bson.M{"$sum": "$totalAmount"}}},
	}
	cursor, err := db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Dashboard query failed")
		return
	}
	defer cursor.Close(ctx)

	var revenue float64
	var agg []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &agg); err == nil && len(agg) > 0 {
		revenue = agg[0].Revenue
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"users":          userCount,
		"products":       productCount,
		"ordersByStatus": ordersByStatus,
		"revenue":        revenue,
	})
}
