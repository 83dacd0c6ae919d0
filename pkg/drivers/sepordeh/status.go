package sepordeh

import "github.com/cassiomorais/multipay/pkg/gateway"

const unknownStatusMessage = "an unexpected error occurred; please contact support"

// statuses maps the HTTP-style codes Sepordeh returns in its body. The
// gateway usually includes its own message; this table only backs up the
// cases where it does not. Purchase and verification share the code space.
var statuses = gateway.StatusMap{
	Fallback: unknownStatusMessage,
	Messages: map[string]string{
		"400": "the submitted values are incomplete or invalid",
		"401": "the merchant id is invalid",
		"403": "access is forbidden",
		"404": "the requested resource was not found",
		"500": "an error occurred on the gateway side",
		"503": "the gateway is temporarily unavailable; please try again later",
	},
}
