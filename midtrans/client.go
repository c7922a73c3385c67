package midtrans

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Snap API endpoints. The sandbox host is the default; production is opted
// into via MIDTRANS_ENV=production.
const (
	sandboxSnapURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	productionSnapURL = "https://app.midtrans.com/snap/v1/transactions"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

func snapURL() string {
	if os.Getenv("MIDTRANS_ENV") == "production" {
		return productionSnapURL
	}
	return sandboxSnapURL
}

func serverKey() string {
	return os.Getenv("MIDTRANS_SERVER_KEY")
}

type snapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name,omitempty"`
		Email     string `json:"email,omitempty"`
		Phone     string `json:"phone,omitempty"`
	} `json:"customer_details"`
}

type snapResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages"`
}

// CreateSnapToken opens a Snap transaction for the order and returns the
// opaque token that drives the hosted payment widget.
func CreateSnapToken(ctx context.Context, orderNumber string, grossAmount int64, name, email, phone string) (string, error) {
	key := serverKey()
	if key == "" {
		return "", fmt.Errorf("MIDTRANS_SERVER_KEY is not configured")
	}

	var req snapRequest
	req.TransactionDetails.OrderID = orderNumber
	req.TransactionDetails.GrossAmount = grossAmount
	req.CustomerDetails.FirstName = name
	req.CustomerDetails.Email = email
	req.CustomerDetails.Phone = phone

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, snapURL(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(key, "")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("snap request: %w", err)
	}
	defer resp.Body.Close()

	var snap snapResponse
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return "", fmt.Errorf("decode snap response: %w", err)
	}
	if resp.StatusCode >= 400 || snap.Token == "" {
		return "", fmt.Errorf("snap error (%d): %v", resp.StatusCode, snap.ErrorMessages)
	}

	return snap.Token, nil
}

// ValidSignature verifies the webhook payload signature:
// sha512(order_id + status_code + gross_amount + server_key).
func ValidSignature(orderID, statusCode, grossAmount, signatureKey, key string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + key))
	return hex.EncodeToString(sum[:]) == signatureKey
}
