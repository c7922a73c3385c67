package farmer

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
	"panenku/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var orderService = orders.NewMongoService()

// GetIncomingOrders lists orders containing at least one line item owned by
// the requesting farmer.
func GetIncomingOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := bson.M{"items.farmerId": farmerID}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := db.OrdersCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		log.Println("GetIncomingOrders Find error:", err)
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

// AdvanceOrderStatus moves an order one step along
// processing -> shipped -> delivered. Requires confirmed payment and an
// owned line item; the service rejects skips and regressions.
func AdvanceOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Status == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Status is required")
		return
	}

	order, err := orderService.FarmerAdvance(ctx, ps.ByName("id"), farmerID, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, orders.ErrForbidden):
			utils.RespondWithError(w, http.StatusForbidden, "Order has no items from your farm")
		case errors.Is(err, orders.ErrPaymentNotPaid):
			utils.RespondWithError(w, http.StatusConflict, "Payment is not confirmed yet")
		case errors.Is(err, orders.ErrInvalidTransition):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			log.Println("AdvanceOrderStatus error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update order")
		}
		return
	}

	mq.EmitOrderEvent(ctx, mq.OrderEvent{
		Type:    "status_changed",
		OrderID: order.OrderID,
		UserID:  order.UserID,
		Status:  string(order.Status),
		Source:  "farmer",
	})

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// Dashboard returns the farmer's headline numbers: product count, orders by
// status and units sold.
func Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	productCount, err := db.ProductsCollection.CountDocuments(ctx, bson.M{"farmerId": farmerID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Dashboard query failed")
		return
	}

	ordersByStatus := map[string]int64{}
	for _, status := range []models.OrderStatus{
		models.StatusPending, models.StatusProcessing, models.StatusShipped,
		models.StatusDelivered, models.StatusCancelled,
	} {
		n, err := db.OrdersCollection.CountDocuments(ctx, bson.M{
			"items.farmerId": farmerID,
			"status":         status,
		})
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Dashboard query failed")
			return
		}
		ordersByStatus[string(status)] = n
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"products":       productCount,
		"ordersByStatus": ordersByStatus,
	})
}
