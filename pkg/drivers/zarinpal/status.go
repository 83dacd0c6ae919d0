package zarinpal

import "github.com/cassiomorais/multipay/pkg/gateway"

const unknownStatusMessage = "an unknown error occurred; if your account was debited the amount returns within 72 hours"

// statuses covers both the payment-request and the verification code spaces,
// which Zarinpal shares across the two calls.
var statuses = gateway.StatusMap{
	Fallback: unknownStatusMessage,
	Messages: map[string]string{
		"100": "the transaction completed successfully",
		"101": "the payment succeeded and was already verified earlier",
		"-9":  "validation of the request inputs failed",
		"-10": "the merchant id or caller IP is not valid",
		"-11": "the merchant id is not active; please contact support",
		"-12": "too many attempts in a short period; please try again later",
		"-15": "the terminal is suspended; please contact support",
		"-16": "the merchant verification level is below the required tier",
		"-30": "the merchant is not allowed to use floating shared settlement",
		"-31": "no settlement bank account is registered on the merchant panel",
		"-32": "the shared settlement values are invalid",
		"-33": "the shared settlement percentages are invalid",
		"-34": "the shared settlement amount exceeds the transaction total",
		"-35": "the number of shared settlement recipients exceeds the limit",
		"-40": "invalid extra parameters; expire_in is not valid",
		"-50": "the paid amount differs from the amount sent for verification",
		"-51": "the payment was unsuccessful",
		"-52": "an unexpected error occurred; please contact support",
		"-53": "the authority does not belong to this merchant id",
		"-54": "the authority is invalid",
	},
}
