package idpay

import "github.com/cassiomorais/multipay/pkg/gateway"

const (
	purchaseFallbackMessage = "the payment could not be created; please try again later"
	unknownStatusMessage    = "an unexpected error occurred during the transaction"
)

// verifyStatuses maps Idpay verification status codes to messages. The
// purchase phase carries its own message in the response body, so only the
// verification phase needs a table.
var verifyStatuses = gateway.StatusMap{
	Fallback: unknownStatusMessage,
	Messages: map[string]string{
		"1":   "payment has not been made",
		"2":   "payment has failed",
		"3":   "an error occurred during payment",
		"4":   "the transaction was blocked",
		"5":   "the amount was returned to the payer",
		"6":   "the transaction was reversed by the system",
		"10":  "awaiting payment confirmation",
		"100": "the payment has been confirmed",
		"101": "the payment was confirmed previously",
		"200": "the amount was deposited to the recipient",
		"11":  "the user is blocked",
		"12":  "the API key was not found",
		"13":  "the request came from an IP other than the one registered for the web service",
		"14":  "the web service has not been approved",
		"21":  "the bank account linked to the web service has not been approved",
		"31":  "the transaction id must not be empty",
		"32":  "the order id must not be empty",
		"33":  "the amount must not be empty",
		"34":  "the amount is lower than the allowed minimum",
		"35":  "the amount is higher than the allowed maximum",
		"36":  "the amount exceeds the permitted ceiling",
		"37":  "the callback address must not be empty",
		"38":  "the callback domain does not match the one registered for the web service",
		"51":  "the transaction was not created",
		"52":  "the inquiry produced no result",
		"53":  "the payment cannot be verified",
		"54":  "the verification window for this transaction has elapsed",
	},
}
