package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cassiomorais/multipay/internal/registry"
	"github.com/cassiomorais/multipay/pkg/gateway"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

var errInvalidRequest = errors.New("invalid request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	switch {
	case errors.Is(err, errInvalidRequest), errors.Is(err, gateway.ErrInvalidAmount):
		resp.Code = "validation_error"
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, registry.ErrUnknownGateway):
		resp.Code = "unknown_gateway"
		writeJSON(w, http.StatusNotFound, resp)
	case errors.Is(err, gateway.ErrPurchaseFailed):
		resp.Code = "purchase_failed"
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, gateway.ErrInvalidPayment):
		resp.Code = "payment_invalid"
		writeJSON(w, http.StatusPaymentRequired, resp)
	default:
		log.Error().Err(err).Msg("unhandled error in handler")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  "internal_error",
		})
	}
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errInvalidRequest, err)
	}
	if err := validate.Struct(dst); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return fmt.Errorf("%w: %s %s validation failed", errInvalidRequest, ve[0].Field(), ve[0].Tag())
		}
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}
