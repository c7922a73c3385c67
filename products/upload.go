package products

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"panenku/db"
	"panenku/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var productPicDir = "./static/productpic"

// UploadProductImage accepts a multipart image, saves the original plus a
// 300px-wide thumbnail, and stores the URL on the product.
func UploadProductImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	farmerID := utils.GetUserIDFromRequest(r)
	if farmerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	file, handler, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Image file missing")
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, handler) {
		return
	}

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Could not decode image")
		return
	}

	if err := os.MkdirAll(productPicDir, 0755); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Unable to save image")
		return
	}

	id := utils.GetUUID()
	originalPath := filepath.Join(productPicDir, id+".jpg")
	thumbnailPath := filepath.Join(productPicDir, id+"_thumb.jpg")

	if err := imaging.Save(img, originalPath); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Unable to save image")
		return
	}
	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, thumbnailPath); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Unable to save thumbnail")
		return
	}

	imageURL := fmt.Sprintf("/static/productpic/%s.jpg", id)

	res, err := db.ProductsCollection.UpdateOne(ctx,
		bson.M{"productid": ps.ByName("id"), "farmerId": farmerID},
		bson.M{"$set": bson.M{"imageUrl": imageURL, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"imageUrl": imageURL})
}
