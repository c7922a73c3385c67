package orders

import "panenku/models"

// GatewayPaymentStatus maps a Midtrans transaction status (plus fraud status
// for card captures) onto the order's payment status. The second return is
// false for transaction states that should not touch the order.
func GatewayPaymentStatus(transactionStatus, fraudStatus string) (models.PaymentStatus, bool) {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return models.PaymentPaid, true
		}
		return models.PaymentPendingVerification, true
	case "settlement":
		return models.PaymentPaid, true
	case "cancel", "deny", "expire":
		return models.PaymentRejected, true
	case "pending":
		return models.PaymentPendingVerification, true
	}
	return "", false
}

// CanSubmitProof reports whether a buyer may (re-)upload payment proof.
// Allowed from unpaid and from rejected, which re-opens verification.
func CanSubmitProof(cur models.PaymentStatus) bool {
	return cur == models.PaymentUnpaid || cur == models.PaymentRejected
}

// CanVerify reports whether an admin may approve or reject the payment.
func CanVerify(cur models.PaymentStatus) bool {
	return cur == models.PaymentPendingVerification
}
