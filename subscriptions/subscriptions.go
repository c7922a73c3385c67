package subscriptions

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"panenku/db"
	"panenku/models"
	"panenku/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetMySubscriptions lists the requesting user's subscriptions.
func GetMySubscriptions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cursor, err := db.SubscriptionsCollection.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve subscriptions")
		return
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading subscriptions")
		return
	}
	if len(subs) == 0 {
		subs = []models.Subscription{}
	}

	utils.RespondWithJSON(w, http.StatusOK, subs)
}

// CreateSubscription starts a recurring delivery directly, outside checkout.
// The product must be subscribable; the subscription is active immediately
// with the first delivery one interval away.
func CreateSubscription(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		ProductID string           `json:"productId"`
		Quantity  int              `json:"quantity"`
		Frequency models.Frequency `json:"frequency"`
		Address   string           `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid subscription payload")
		return
	}
	days, ok := input.Frequency.Days()
	if !ok || input.ProductID == "" || input.Quantity <= 0 || input.Address == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}

	var product models.Product
	if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": input.ProductID}).Decode(&product); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	if !product.Subscribable {
		utils.RespondWithError(w, http.StatusBadRequest, "Product is not available for subscription")
		return
	}

	now := time.Now()
	sub := models.Subscription{
		SubscriptionID: utils.GetUUID(),
		UserID:         userID,
		ProductID:      product.ProductID,
		ProductName:    product.Name,
		Quantity:       input.Quantity,
		Frequency:      input.Frequency,
		Status:         models.SubActive,
		Address:        input.Address,
		NextDelivery:   now.AddDate(0, 0, days),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := db.SubscriptionsCollection.InsertOne(ctx, sub); err != nil {
		log.Println("CreateSubscription InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, sub)
}

// UpdateSubscription pauses, resumes or cancels a subscription.
func UpdateSubscription(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Action string `json:"action"` // "pause" | "resume" | "cancel"
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	var sub models.Subscription
	filter := bson.M{"subscriptionid": ps.ByName("id"), "userId": userID}
	if err := db.SubscriptionsCollection.FindOne(ctx, filter).Decode(&sub); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Subscription not found")
		return
	}

	var status models.SubscriptionStatus
	switch input.Action {
	case "pause":
		if sub.Status != models.SubActive {
			utils.RespondWithError(w, http.StatusConflict, "Only active subscriptions can be paused")
			return
		}
		status = models.SubPaused
	case "resume":
		if sub.Status != models.SubPaused {
			utils.RespondWithError(w, http.StatusConflict, "Only paused subscriptions can be resumed")
			return
		}
		status = models.SubActive
	case "cancel":
		if sub.Status == models.SubCancelled {
			utils.RespondWithError(w, http.StatusConflict, "Subscription is already cancelled")
			return
		}
		status = models.SubCancelled
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "Action must be pause, resume or cancel")
		return
	}

	if _, err := db.SubscriptionsCollection.UpdateOne(ctx, filter,
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update subscription")
		return
	}

	sub.Status = status
	utils.RespondWithJSON(w, http.StatusOK, sub)
}

// DeleteSubscription removes a subscription that is not currently active.
func DeleteSubscription(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := db.SubscriptionsCollection.DeleteOne(ctx, bson.M{
		"subscriptionid": ps.ByName("id"),
		"userId":         userID,
		"status":         bson.M{"$ne": models.SubActive},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete subscription")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusConflict, "Subscription not found or still active")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// ActivateForOrder flips pending subscriptions created at checkout to active
// once the originating order's payment is confirmed. The first delivery is
// scheduled one interval from activation.
func ActivateForOrder(ctx context.Context, orderID string, now time.Time) {
	cursor, err := db.SubscriptionsCollection.Find(ctx, bson.M{
		"orderId": orderID,
		"status":  models.SubPending,
	})
	if err != nil {
		log.Println("ActivateForOrder Find error:", err)
		return
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		log.Println("ActivateForOrder cursor.All error:", err)
		return
	}

	for _, sub := range subs {
		days, ok := sub.Frequency.Days()
		if !ok {
			continue
		}
		_, err := db.SubscriptionsCollection.UpdateOne(ctx,
			bson.M{"subscriptionid": sub.SubscriptionID},
			bson.M{"$set": bson.M{
				"status":       models.SubActive,
				"nextDelivery": now.AddDate(0, 0, days),
				"updatedAt":    now,
			}},
		)
		if err != nil {
			log.Println("ActivateForOrder UpdateOne error:", err)
		}
	}
}
