package orders

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"panenku/db"
	"panenku/globals"
	"panenku/models"
	"panenku/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

// receiptQRPayload returns "orderNumber|orderID|signature" so the QR can be
// verified against tampering.
func receiptQRPayload(order *models.Order) string {
	data := fmt.Sprintf("%s|%s", order.OrderNumber, order.OrderID)
	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// DownloadReceipt streams a PDF receipt for a paid order owned by the
// requesting buyer.
func DownloadReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": ps.ByName("id"), "userId": userID}).Decode(&order)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if order.PaymentStatus != models.PaymentPaid {
		utils.RespondWithError(w, http.StatusConflict, "Receipt is available once payment is confirmed")
		return
	}

	qrPNG, err := qrcode.Encode(receiptQRPayload(&order), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "PanenKu Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order: %s", order.OrderNumber))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", order.CreatedAt.Format("2 Jan 2006 15:04")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Ship to: %s", order.Address))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(90, 8, "Item")
	pdf.Cell(30, 8, "Qty")
	pdf.Cell(40, 8, "Subtotal")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	for _, it := range order.Items {
		pdf.Cell(90, 8, it.Name)
		pdf.Cell(30, 8, fmt.Sprintf("%d %s", it.Quantity, it.Unit))
		pdf.Cell(40, 8, fmt.Sprintf("Rp %.0f", it.Price*float64(it.Quantity)))
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(120, 8, "Total")
	pdf.Cell(40, 8, fmt.Sprintf("Rp %.0f", order.TotalAmount))
	pdf.Ln(8)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.OrderNumber+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
