package products

import (
	"context"
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

// GetProducts lists catalog entries with optional category, farmer,
// subscribable and search filters plus pagination.
func GetProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := utils.ParseQueryOptions(r)

	filter := bson.M{}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.FarmerID != "" {
		filter["farmerId"] = opts.FarmerID
	}
	if r.URL.Query().Get("subscribable") == "true" {
		filter["subscribable"] = true
	}
	if opts.Search != "" {
		filter["name"] = bson.M{"$regex": opts.Search, "$options": "i"}
	}

	findOpts := options.Find().
		SetSkip(opts.Skip()).
		SetLimit(int64(opts.Limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := db.ProductsCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Println("GetProducts Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve products")
		return
	}
	defer cursor.Close(ctx)

	var items []models.Product
	if err := cursor.All(ctx, &items); err != nil {
		log.Println("GetProducts cursor.All error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error reading products")
		return
	}
	if len(items) == 0 {
		items = []models.Product{}
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// GetProduct returns one product by id.
func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	err := db.ProductsCollection.FindOne(ctx, bson.M{"productid": ps.ByName("id")}).Decode(&product)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, product)
}
