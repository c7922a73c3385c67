package products

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
)

// Farmer-facing product management. Every mutation is guarded by ownership:
// the filter matches both productid and the requesting farmer's id.

func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product payload")
		return
	}
	if product.Name == "" || product.Price <= 0 || product.Stock < 0 || product.Unit == "" || product.Category == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}

	var farmer models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": farmerID}).Decode(&farmer); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	product.ProductID = utils.GetUUID()
	product.FarmerID = farmerID
	product.FarmerName = farmer.FarmName
	if product.FarmerName == "" {
		product.FarmerName = farmer.Username
	}
	product.SoldCount = 0
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	if _, err := db.ProductsCollection.InsertOne(ctx, product); err != nil {
		log.Println("CreateProduct InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, product)
}

func UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Name         *string    `json:"name"`
		Description  *string    `json:"description"`
		Price        *float64   `json:"price"`
		Unit         *string    `json:"unit"`
		Category     *string    `json:"category"`
		HarvestDate  *time.Time `json:"harvestDate"`
		Location     *string    `json:"location"`
		Subscribable *bool      `json:"subscribable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product payload")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Name != nil {
		update["name"] = *input.Name
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Price must be positive")
			return
		}
		update["price"] = *input.Price
	}
	if input.Unit != nil {
		update["unit"] = *input.Unit
	}
	if input.Category != nil {
		update["category"] = *input.Category
	}
	if input.HarvestDate != nil {
		update["harvestDate"] = *input.HarvestDate
	}
	if input.Location != nil {
		update["location"] = *input.Location
	}
	if input.Subscribable != nil {
		update["subscribable"] = *input.Subscribable
	}

	res, err := db.ProductsCollection.UpdateOne(ctx,
		bson.M{"productid": ps.ByName("id"), "farmerId": farmerID},
		bson.M{"$set": update},
	)
	if err != nil {
		log.Println("UpdateProduct UpdateOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := db.ProductsCollection.DeleteOne(ctx,
		bson.M{"productid": ps.ByName("id"), "farmerId": farmerID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// AdjustStock applies a signed delta to a product's stock. A negative delta
// larger than the current stock is rejected rather than floored, so stock
// never goes below zero.
func AdjustStock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Delta == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Delta must be a non-zero integer")
		return
	}

	filter := bson.M{"productid": ps.ByName("id"), "farmerId": farmerID}
	if input.Delta < 0 {
		filter["stock"] = bson.M{"$gte": -input.Delta}
	}

	res, err := db.ProductsCollection.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"stock": input.Delta},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		log.Println("AdjustStock UpdateOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to adjust stock")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Product not found or insufficient stock")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// GetMyProducts lists the requesting farmer's own products.
func GetMyProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cursor, err := db.ProductsCollection.Find(ctx, bson.M{"farmerId": farmerID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve products")
		return
	}
	defer cursor.Close(ctx)

	var items []models.Product
	if err := cursor.All(ctx, &items); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading products")
		return
	}
	if len(items) == 0 {
		items = []models.Product{}
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}
