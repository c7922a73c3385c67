package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"panenku/mq"
	"panenku/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
)

var proofDir = "./static/paymentproof"

// UploadPaymentProof accepts a multipart image of a bank-transfer receipt
// and moves the order's payment into pending verification.
func UploadPaymentProof(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	file, handler, err := r.FormFile("proof")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Proof file missing")
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

	if err := os.MkdirAll(proofDir, 0755); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Unable to save proof")
		return
	}

	id := utils.GetUUID()
	if err := imaging.Save(img, filepath.Join(proofDir, id+".jpg")); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Unable to save proof")
		return
	}
	proofURL := fmt.Sprintf("/static/paymentproof/%s.jpg", id)

	order, err := service.SubmitProof(ctx, ps.ByName("id"), userID, proofURL)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrForbidden):
			utils.RespondWithError(w, http.StatusForbidden, "Not your order")
		case errors.Is(err, ErrInvalidTransition):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record payment proof")
		}
		return
	}

	mq.EmitOrderEvent(ctx, mq.OrderEvent{
		Type:          "payment_changed",
		OrderID:       order.OrderID,
		UserID:        order.UserID,
		PaymentStatus: string(order.PaymentStatus),
		Source:        "buyer",
	})

	utils.RespondWithJSON(w, http.StatusOK, order)
}
