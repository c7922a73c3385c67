package cart

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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetCart returns all cart items for the user.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cursor, err := db.CartCollection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		log.Println("GetCart Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve cart")
		return
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		log.Println("GetCart cursor.All error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading cart data")
		return
	}
	if len(items) == 0 {
		items = []models.CartItem{}
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// AddToCart adds a product to the cart, or bumps its quantity if already
// present. The resulting quantity is clamped to the product's live stock.
func AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if input.ProductID == "" || input.Quantity <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}

	var product models.Product
	if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": input.ProductID}).Decode(&product); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	if product.Stock <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Product is out of stock")
		return
	}

	filter := bson.M{"userId": userID, "productId": input.ProductID}

	var existing models.CartItem
	err := db.CartCollection.FindOne(ctx, filter).Decode(&existing)
	if err != nil && err != mongo.ErrNoDocuments {
		log.Println("AddToCart FindOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add to cart")
		return
	}

	quantity := existing.Quantity + input.Quantity
	if quantity > product.Stock {
		quantity = product.Stock
	}

	update := bson.M{
		"$set": bson.M{
			"quantity": quantity,
			"name":     product.Name,
			"imageUrl": product.ImageURL,
			"price":    product.Price,
			"unit":     product.Unit,
			"farmerId": product.FarmerID,
		},
		"$setOnInsert": bson.M{"addedAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := db.CartCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		log.Println("AddToCart UpdateOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add to cart")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"status": "added", "quantity": quantity})
}

// UpdateQuantity sets an item's quantity, clamped to live stock. A quantity
// of zero or less removes the item.
func UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	productID := ps.ByName("productid")
	filter := bson.M{"userId": userID, "productId": productID}

	if input.Quantity <= 0 {
		if _, err := db.CartCollection.DeleteOne(ctx, filter); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to remove item")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "removed"})
		return
	}

	var product models.Product
	if err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": productID}).Decode(&product); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	quantity := input.Quantity
	if quantity > product.Stock {
		quantity = product.Stock
	}

	res, err := db.CartCollection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"quantity": quantity}})
	if err != nil {
		log.Println("UpdateQuantity UpdateOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Item not in cart")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "updated", "quantity": quantity})
}

// RemoveItem deletes one product line from the cart.
func RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := db.CartCollection.DeleteOne(ctx, bson.M{"userId": userID, "productId": ps.ByName("productid")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to remove item")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Item not in cart")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "removed"})
}

// ClearCart empties the user's cart.
func ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if _, err := db.CartCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "cleared"})
}
